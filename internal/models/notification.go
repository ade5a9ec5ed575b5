package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification represents a row in the notifications table. Rows are created
// when neighborhood content changes and are never physically deleted in the
// normal flow; user actions only flip is_read / is_archived.
type Notification struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	UserID           uint      `json:"user_id" gorm:"index"` // recipient
	Title            string    `json:"title"`
	ActorID          *uint     `json:"actor_id,omitempty" gorm:"index"`
	ContentType      string    `json:"content_type" gorm:"size:30;index"`
	ContentID        string    `json:"content_id" gorm:"size:36;index"`
	NotificationType string    `json:"notification_type" gorm:"size:30"`
	ActionType       string    `json:"action_type" gorm:"size:20"`
	ActionLabel      string    `json:"action_label" gorm:"size:40"`
	IsRead           bool      `json:"is_read" gorm:"default:false;index"`
	IsArchived       bool      `json:"is_archived" gorm:"default:false;index"`
	RelevanceScore   *float64  `json:"relevance_score,omitempty"`
	Metadata         string    `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	CreatedAt        time.Time `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// EnhancedNotification is the read-time projection served to clients:
// the stored row plus resolved actor profile and derived display fields.
// It is never persisted.
type EnhancedNotification struct {
	Notification
	Actor         *Profile `json:"actor"`
	TimeAgo       string   `json:"time_ago"`
	CanNavigate   bool     `json:"can_navigate"`
	HighlightType string   `json:"highlight_type"`
}
