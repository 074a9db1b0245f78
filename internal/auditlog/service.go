package auditlog

import (
	"context"
	"encoding/json"
	"log"
)

type Service interface {
	LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error
	RecentForUser(ctx context.Context, userID uint, limit int) ([]AuditLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// LogAction creates a new audit log entry
func (s *service) LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error {
	// Handle nil details
	if details == nil {
		details = make(map[string]interface{})
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := &AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   detailsJSON,
		IPAddress: ip,
		Status:    status,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("❌ Audit log error (%s): %v", action, err)
		return err
	}
	return nil
}

func (s *service) RecentForUser(ctx context.Context, userID uint, limit int) ([]AuditLog, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
