package database

import (
	"fmt"
	"log"

	"github.com/amaturano/event-management/internal/auditlog"
	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/comment"
	"github.com/amaturano/event-management/internal/event"
	"github.com/amaturano/event-management/internal/messaging"
	"gorm.io/gorm"
)

// Migrate creates or updates every table of the application.
func Migrate(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")

	// the custom join model must be registered before Event is migrated
	if err := db.SetupJoinTable(&event.Event{}, "Tags", &event.EventTag{}); err != nil {
		return fmt.Errorf("setup event_tags: %w", err)
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&auth.UserProfile{},
		&auditlog.AuditLog{},
		&event.Category{},
		&event.Tag{},
		&event.Event{},
		&event.EventTag{},
		&event.EventPhoto{},
		&event.EventSponsor{},
		&event.AttendeeEvent{},
		&event.Subscription{},
		&comment.Comment{},
		&comment.FeedBack{},
		&messaging.Message{},
		&messaging.Notification{},
		&messaging.UserNotification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}
