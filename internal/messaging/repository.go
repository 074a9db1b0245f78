package messaging

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateMessage(ctx context.Context, m *Message) error
	Inbox(ctx context.Context, userID uint, limit int) ([]Message, error)
	Sent(ctx context.Context, userID uint, limit int) ([]Message, error)

	// CreateNotification stores n and one UserNotification per user in one transaction.
	CreateNotification(ctx context.Context, n *Notification, userIDs []uint) ([]UserNotification, error)
	ListNotifications(ctx context.Context, userID uint, limit int) ([]UserNotification, error)
	MarkSeen(ctx context.Context, id, userID uint) error
	CountUnseen(ctx context.Context, userID uint) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ------------------------------
// Messages
// ------------------------------

func (r *repository) CreateMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(m).Error
}

func (r *repository) Inbox(ctx context.Context, userID uint, limit int) ([]Message, error) {
	var list []Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repository) Sent(ctx context.Context, userID uint, limit int) ([]Message, error) {
	var list []Message
	err := r.db.WithContext(ctx).
		Preload("Receiver").
		Where("sender_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ------------------------------
// Notifications
// ------------------------------

func (r *repository) CreateNotification(ctx context.Context, n *Notification, userIDs []uint) ([]UserNotification, error) {
	items := make([]UserNotification, 0, len(userIDs))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		for _, id := range userIDs {
			items = append(items, UserNotification{UserID: id, NotificationID: n.ID})
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Omit("Notification").Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Notification = *n
	}
	return items, nil
}

func (r *repository) ListNotifications(ctx context.Context, userID uint, limit int) ([]UserNotification, error) {
	var list []UserNotification
	err := r.db.WithContext(ctx).
		Preload("Notification").
		Where("user_id = ?", userID).
		Order("seen ASC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *repository) MarkSeen(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).
		Model(&UserNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("seen", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) CountUnseen(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&UserNotification{}).
		Where("user_id = ? AND seen = ?", userID, false).
		Count(&count).Error
	return count, err
}
