package userprofile

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/amaturano/event-management/internal/auditlog"
	"github.com/amaturano/event-management/internal/auth"
)

// ImageStore is satisfied by utils.ImageUpload.
type ImageStore interface {
	CheckImage(file *multipart.FileHeader) error
	Save(file *multipart.FileHeader, prefix string) (string, error)
}

type Service interface {
	GetProfile(ctx context.Context, userID uint) (*auth.UserProfile, error)
	UpdateProfile(ctx context.Context, user *auth.User, in ProfileInput, ip string) (*auth.UserProfile, error)
	RecentActivity(ctx context.Context, userID uint) ([]auditlog.AuditLog, error)
}

// ProfileInput is the validated profile form. Picture is optional.
type ProfileInput struct {
	Name             string
	Lastname         string
	Bio              string
	WebsiteURL       string
	SocialMediaLinks []string
	Picture          *multipart.FileHeader
}

type service struct {
	repo     Repository
	images   ImageStore
	auditSvc auditlog.Service
}

func NewService(repo Repository, images ImageStore, auditSvc auditlog.Service) Service {
	return &service{repo: repo, images: images, auditSvc: auditSvc}
}

// GetProfile never returns nil for an existing user; a missing row is an empty profile.
func (s *service) GetProfile(ctx context.Context, userID uint) (*auth.UserProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		profile = &auth.UserProfile{UserID: userID}
	}
	return profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, user *auth.User, in ProfileInput, ip string) (*auth.UserProfile, error) {
	// the picture is checked before anything is written
	if in.Picture != nil {
		if err := s.images.CheckImage(in.Picture); err != nil {
			return nil, err
		}
	}

	profile, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if in.Picture != nil {
		url, err := s.images.Save(in.Picture, strconv.FormatUint(uint64(user.ID), 10))
		if err != nil {
			return nil, err
		}
		profile.ProfilePictureURL = url
	}
	profile.Bio = strings.TrimSpace(in.Bio)
	profile.WebsiteURL = strings.TrimSpace(in.WebsiteURL)
	profile.SocialMediaLinks = in.SocialMediaLinks

	updated := *user
	updated.Name = strings.TrimSpace(in.Name)
	updated.Lastname = strings.TrimSpace(in.Lastname)

	status := auditlog.StatusSuccess
	err = s.repo.Save(ctx, &updated, profile)
	if err != nil {
		status = auditlog.StatusFailure
	}

	// Log the audit action (don't fail the operation if audit fails)
	if s.auditSvc != nil {
		_ = s.auditSvc.LogAction(ctx, &user.ID, auditlog.ActionProfileUpdated, map[string]interface{}{
			"picture_changed": in.Picture != nil,
			"links":           len(in.SocialMediaLinks),
		}, ip, status)
	}

	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	user.Name, user.Lastname = updated.Name, updated.Lastname
	return profile, nil
}

func (s *service) RecentActivity(ctx context.Context, userID uint) ([]auditlog.AuditLog, error) {
	if s.auditSvc == nil {
		return nil, nil
	}
	return s.auditSvc.RecentForUser(ctx, userID, 10)
}
