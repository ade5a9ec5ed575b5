package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a neighborhood gathering residents can RSVP to.
type Event struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	NeighborhoodID uint       `json:"neighborhood_id" gorm:"index"`
	AuthorID       uint       `json:"author_id" gorm:"index"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	StartTime      time.Time  `json:"start_time" gorm:"index"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	IsArchived     bool       `json:"is_archived" gorm:"default:false;index"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EventRSVP records a resident's attendance intent for an event.
// One row per (event, user).
type EventRSVP struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   string    `json:"event_id" gorm:"size:36;index:idx_event_user,unique"`
	UserID    uint      `json:"user_id" gorm:"index:idx_event_user,unique"`
	Status    string    `json:"status" gorm:"size:20"` // going, maybe, declined
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SafetyUpdate is a resident-authored safety report or alert.
type SafetyUpdate struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	NeighborhoodID uint      `json:"neighborhood_id" gorm:"index"`
	AuthorID       uint      `json:"author_id" gorm:"index"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type" gorm:"size:20"` // alert, observation, resolved
	IsArchived     bool      `json:"is_archived" gorm:"default:false;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *SafetyUpdate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SkillsExchange is an offer or request for a skill (tutoring, repairs, ...).
type SkillsExchange struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	NeighborhoodID uint      `json:"neighborhood_id" gorm:"index"`
	AuthorID       uint      `json:"author_id" gorm:"index"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequestType    string    `json:"request_type" gorm:"size:10"` // offer, need
	Category       string    `json:"category" gorm:"size:30"`
	IsArchived     bool      `json:"is_archived" gorm:"default:false;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *SkillsExchange) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// GoodsExchange is an item offered or requested (freebies, lending).
type GoodsExchange struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	NeighborhoodID uint      `json:"neighborhood_id" gorm:"index"`
	AuthorID       uint      `json:"author_id" gorm:"index"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequestType    string    `json:"request_type" gorm:"size:10"` // offer, need
	Condition      string    `json:"condition" gorm:"size:20"`
	ImageURL       string    `json:"image_url"`
	IsArchived     bool      `json:"is_archived" gorm:"default:false;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (g *GoodsExchange) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// GroupUpdate is a post inside a neighborhood group.
type GroupUpdate struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	NeighborhoodID uint      `json:"neighborhood_id" gorm:"index"`
	GroupName      string    `json:"group_name" gorm:"size:80;index"`
	AuthorID       uint      `json:"author_id" gorm:"index"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	IsArchived     bool      `json:"is_archived" gorm:"default:false;index"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (g *GroupUpdate) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=120"`
	Description string     `json:"description" validate:"max=5000"`
	Location    string     `json:"location" validate:"max=200"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

type RSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=going maybe declined"`
}

type CreateSafetyUpdateRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=5000"`
	Type        string `json:"type" validate:"required,oneof=alert observation resolved"`
}

type CreateExchangeRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=5000"`
	RequestType string `json:"request_type" validate:"required,oneof=offer need"`
	Category    string `json:"category" validate:"max=30"`
	Condition   string `json:"condition" validate:"max=20"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

type CreateGroupUpdateRequest struct {
	GroupName string `json:"group_name" validate:"required,min=2,max=80"`
	Title     string `json:"title" validate:"required,min=2,max=120"`
	Content   string `json:"content" validate:"max=5000"`
}
