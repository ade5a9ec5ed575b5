package repositories

import (
	"github.com/neighborhq/backend/internal/models"
	"gorm.io/gorm"
)

// EventRepository defines the interface for neighborhood event operations
type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id string) (*models.Event, error)
	List(neighborhoodID uint, includeArchived bool) ([]models.Event, error)
	Delete(id string, authorID uint) error
	UpsertRSVP(rsvp *models.EventRSVP) error
}

type postgresEventRepository struct {
	db *gorm.DB
}

func NewPostgresEventRepository(db *gorm.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *postgresEventRepository) GetByID(id string) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *postgresEventRepository) List(neighborhoodID uint, includeArchived bool) ([]models.Event, error) {
	tx := r.db.Where("neighborhood_id = ?", neighborhoodID)
	if !includeArchived {
		tx = tx.Where("is_archived = ?", false)
	}
	var events []models.Event
	if err := tx.Order("start_time ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Delete removes an event, scoped to its author. Notification rows pointing
// at it are left in place; the fetcher join filters them out.
func (r *postgresEventRepository) Delete(id string, authorID uint) error {
	result := r.db.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresEventRepository) UpsertRSVP(rsvp *models.EventRSVP) error {
	var existing models.EventRSVP
	err := r.db.Where("event_id = ? AND user_id = ?", rsvp.EventID, rsvp.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(rsvp).Error
	}
	if err != nil {
		return err
	}
	existing.Status = rsvp.Status
	return r.db.Save(&existing).Error
}
