package repositories

import (
	"github.com/neighborhq/backend/internal/models"
	"gorm.io/gorm"
)

// SafetyRepository defines the interface for safety update operations
type SafetyRepository interface {
	Create(update *models.SafetyUpdate) error
	GetByID(id string) (*models.SafetyUpdate, error)
	List(neighborhoodID uint, includeArchived bool) ([]models.SafetyUpdate, error)
	Resolve(id string, authorID uint) error
}

type postgresSafetyRepository struct {
	db *gorm.DB
}

func NewPostgresSafetyRepository(db *gorm.DB) SafetyRepository {
	return &postgresSafetyRepository{db: db}
}

func (r *postgresSafetyRepository) Create(update *models.SafetyUpdate) error {
	return r.db.Create(update).Error
}

func (r *postgresSafetyRepository) GetByID(id string) (*models.SafetyUpdate, error) {
	var update models.SafetyUpdate
	if err := r.db.First(&update, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &update, nil
}

func (r *postgresSafetyRepository) List(neighborhoodID uint, includeArchived bool) ([]models.SafetyUpdate, error) {
	tx := r.db.Where("neighborhood_id = ?", neighborhoodID)
	if !includeArchived {
		tx = tx.Where("is_archived = ?", false)
	}
	var updates []models.SafetyUpdate
	if err := tx.Order("created_at DESC").Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *postgresSafetyRepository) Resolve(id string, authorID uint) error {
	result := r.db.Model(&models.SafetyUpdate{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Update("type", "resolved")
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
