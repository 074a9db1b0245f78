package userprofile

import (
	"context"
	"errors"

	"github.com/amaturano/event-management/internal/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uint) (*auth.UserProfile, error)
	// Save updates the user's name columns and creates or updates the profile row.
	Save(ctx context.Context, user *auth.User, profile *auth.UserProfile) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetByUserID returns nil, nil when the user has no profile row yet.
func (r *repository) GetByUserID(ctx context.Context, userID uint) (*auth.UserProfile, error) {
	var profile auth.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) Save(ctx context.Context, user *auth.User, profile *auth.UserProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&auth.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{"name": user.Name, "lastname": user.Lastname}).Error; err != nil {
			return err
		}

		profile.UserID = user.ID
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"profile_picture_url", "bio", "website_url", "social_media_links", "updated_at",
			}),
		}).Create(profile).Error
	})
}
