package repositories

import (
	"github.com/neighborhq/backend/internal/models"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group update operations
type GroupRepository interface {
	CreateUpdate(update *models.GroupUpdate) error
	ListUpdates(neighborhoodID uint, groupName string) ([]models.GroupUpdate, error)
}

type postgresGroupRepository struct {
	db *gorm.DB
}

func NewPostgresGroupRepository(db *gorm.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) CreateUpdate(update *models.GroupUpdate) error {
	return r.db.Create(update).Error
}

func (r *postgresGroupRepository) ListUpdates(neighborhoodID uint, groupName string) ([]models.GroupUpdate, error) {
	tx := r.db.Where("neighborhood_id = ? AND is_archived = ?", neighborhoodID, false)
	if groupName != "" {
		tx = tx.Where("group_name = ?", groupName)
	}
	var updates []models.GroupUpdate
	if err := tx.Order("created_at DESC").Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}
