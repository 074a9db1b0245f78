package comment

import (
	"time"

	"github.com/amaturano/event-management/internal/auth"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Rating    *int      `json:"rating,omitempty"` // 1-5
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User auth.User `json:"user"`
}

func (Comment) TableName() string { return "comments" }

// FeedBack is private feedback for the organizer; it is never shown to other attendees.
type FeedBack struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FeedbackText string    `gorm:"type:text;not null" json:"feedback_text"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	EventID      uint      `gorm:"not null;index" json:"event_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	User auth.User `json:"user"`
}

func (FeedBack) TableName() string { return "feedback" }
