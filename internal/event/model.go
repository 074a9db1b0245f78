package event

import (
	"time"

	"github.com/amaturano/event-management/internal/auth"
)

// ============================
// 🔷 GORM Models

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

func (Category) TableName() string { return "categories" }

type Event struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	StartDate    time.Time `gorm:"not null;index" json:"start_date"`
	FinishDate   time.Time `gorm:"not null" json:"finish_date"`
	CategoryID   uint      `gorm:"not null;index" json:"category_id"`
	OrganizerID  uint      `gorm:"not null;index" json:"organizer_id"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	LocationName string    `gorm:"size:200" json:"location_name"`
	Address      string    `gorm:"size:255" json:"address"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category  Category       `json:"category"`
	Organizer auth.User      `gorm:"foreignKey:OrganizerID" json:"organizer"`
	Photos    []EventPhoto   `json:"photos,omitempty"`
	Sponsors  []EventSponsor `json:"sponsors,omitempty"`
	Tags      []Tag          `gorm:"many2many:event_tags" json:"tags,omitempty"`

	AttendeeCount int `gorm:"-" json:"attendee_count"`
}

func (Event) TableName() string { return "events" }

type EventPhoto struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"not null;index" json:"event_id"`
	PhotoURL   string    `gorm:"size:255;not null" json:"photo_url"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EventPhoto) TableName() string { return "event_photos" }

type EventSponsor struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	EventID     uint   `gorm:"not null;index" json:"event_id"`
	SponsorName string `gorm:"size:100;not null" json:"sponsor_name"`
	SponsorLogo string `gorm:"size:255" json:"sponsor_logo"`
}

func (EventSponsor) TableName() string { return "event_sponsors" }

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}

func (Tag) TableName() string { return "tags" }

// EventTag is the join table of Event.Tags.
type EventTag struct {
	EventID uint `gorm:"primaryKey"`
	TagID   uint `gorm:"primaryKey"`
}

func (EventTag) TableName() string { return "event_tags" }

type AttendeeEvent struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EventID          uint      `gorm:"not null;uniqueIndex:idx_attendee_event_user" json:"event_id"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_attendee_event_user;index" json:"user_id"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`

	User auth.User `json:"user"`
}

func (AttendeeEvent) TableName() string { return "attendees_events" }

type Subscription struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_subscription_user_category" json:"user_id"`
	CategoryID       uint      `gorm:"not null;uniqueIndex:idx_subscription_user_category;index" json:"category_id"`
	SubscriptionDate time.Time `gorm:"autoCreateTime" json:"subscription_date"`
}

func (Subscription) TableName() string { return "subscriptions" }

// DefaultCategories are created on startup when missing.
var DefaultCategories = []string{"Music", "Sports", "Technology", "Art", "Education", "Community"}
