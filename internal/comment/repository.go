package comment

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, eventID uint) ([]Comment, error)
	CreateFeedback(ctx context.Context, f *FeedBack) error
	ListFeedback(ctx context.Context, eventID uint) ([]FeedBack, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateComment(ctx context.Context, c *Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(c).Error
}

func (r *repository) ListComments(ctx context.Context, eventID uint) ([]Comment, error) {
	var list []Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *repository) CreateFeedback(ctx context.Context, f *FeedBack) error {
	return r.db.WithContext(ctx).Omit("User").Create(f).Error
}

func (r *repository) ListFeedback(ctx context.Context, eventID uint) ([]FeedBack, error) {
	var list []FeedBack
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
