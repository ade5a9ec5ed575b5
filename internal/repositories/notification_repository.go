package repositories

import (
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
	"gorm.io/gorm"
)

// NotificationRepository defines the narrow surface through which the
// service reads and mutates notification rows. Mutations only ever flip
// is_read / is_archived, scoped by id and recipient.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	CreateBatch(notifications []models.Notification) error
	GetPage(userID, neighborhoodID uint, showArchived bool, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(userID uint) (int64, error)
	MarkAsRead(id string, userID uint) error
	MarkAllAsRead(userID uint) error
	Archive(id string, userID uint) error
	Unarchive(id string, userID uint) error
}

type postgresNotificationRepository struct {
	db       *gorm.DB
	registry *registry.Registry
}

func NewPostgresNotificationRepository(db *gorm.DB, reg *registry.Registry) NotificationRepository {
	return &postgresNotificationRepository{db: db, registry: reg}
}

func (r *postgresNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

// GetPage reads one page of the full notifications view in a single query:
// left joins across every registered content table, scoped to the user's
// neighborhood with the registry's OR condition. Rows whose content was
// deleted match no join and fall out here.
func (r *postgresNotificationRepository) GetPage(userID, neighborhoodID uint, showArchived bool, page, limit int) ([]models.Notification, int64, error) {
	condition, args := r.registry.NeighborhoodFilter(neighborhoodID)

	scoped := func() *gorm.DB {
		tx := r.db.Model(&models.Notification{})
		for _, join := range r.registry.LeftJoinClauses() {
			tx = tx.Joins(join)
		}
		return tx.
			Where("notifications.user_id = ?", userID).
			Where("notifications.is_archived = ?", showArchived).
			Where(condition, args...)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	offset := (page - 1) * limit
	err := scoped().
		Select("notifications.*").
		Order("notifications.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ? AND is_archived = ?", userID, false, false).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(id string, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *postgresNotificationRepository) Archive(id string, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_archived", true).Error
}

func (r *postgresNotificationRepository) Unarchive(id string, userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_archived", false).Error
}
