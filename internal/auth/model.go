package auth

import (
	"time"

	"gorm.io/datatypes"
)

// User represents the users table.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email         string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	GoogleID      *string   `gorm:"size:255;uniqueIndex" json:"google_id,omitempty"`
	RegisteredVia string    `gorm:"size:50;not null;default:local" json:"registered_via"`
	Name          string    `gorm:"size:100" json:"name"`
	Lastname      string    `gorm:"size:100" json:"lastname"`
	CreatedAt     time.Time `json:"created_at"`

	Profile *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile holds the optional public details of a user. At most one row per user.
type UserProfile struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	UserID            uint                        `gorm:"not null;uniqueIndex" json:"user_id"`
	ProfilePictureURL string                      `gorm:"size:255" json:"profile_picture_url"`
	Bio               string                      `gorm:"type:text" json:"bio"`
	WebsiteURL        string                      `gorm:"size:255" json:"website_url"`
	SocialMediaLinks  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"social_media_links"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// DisplayName falls back to the username when no real name was given.
func (u User) DisplayName() string {
	switch {
	case u.Name != "" && u.Lastname != "":
		return u.Name + " " + u.Lastname
	case u.Name != "":
		return u.Name
	default:
		return u.Username
	}
}
