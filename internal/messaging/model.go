package messaging

import (
	"time"

	"github.com/amaturano/event-management/internal/auth"
)

// Message is a direct message between two users, optionally about an event.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID     uint      `gorm:"not null;index" json:"receiver_id"`
	EventID        *uint     `gorm:"index" json:"event_id,omitempty"`
	MessageContent string    `gorm:"type:text" json:"message_content"`
	SentAt         time.Time `gorm:"autoCreateTime" json:"sent_at"`

	Sender   auth.User `gorm:"foreignKey:SenderID" json:"sender"`
	Receiver auth.User `gorm:"foreignKey:ReceiverID" json:"receiver"`
}

func (Message) TableName() string { return "messages" }

type Notification struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	NotificationText string    `gorm:"type:text;not null" json:"notification_text"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// UserNotification is the per-recipient copy of a Notification.
type UserNotification struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	UserID         uint `gorm:"not null;index" json:"user_id"`
	NotificationID uint `gorm:"not null;index" json:"notification_id"`
	Seen           bool `gorm:"not null;default:false" json:"seen"`

	Notification Notification `json:"notification"`
}

func (UserNotification) TableName() string { return "user_notifications" }
