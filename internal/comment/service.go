package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amaturano/event-management/internal/auth"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEmptyText     = errors.New("text is empty")
)

// EventChecker is satisfied by event.Service.
type EventChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type Service interface {
	AddComment(ctx context.Context, eventID uint, user *auth.User, content string, rating *int) (*Comment, error)
	AddFeedback(ctx context.Context, eventID uint, user *auth.User, text string) (*FeedBack, error)
	Comments(ctx context.Context, eventID uint) ([]Comment, error)
	Feedback(ctx context.Context, eventID uint) ([]FeedBack, error)
	// AverageRating is 0 when no comment carries a rating.
	AverageRating(comments []Comment) float64
}

type service struct {
	repo   Repository
	events EventChecker
}

func NewService(repo Repository, events EventChecker) Service {
	return &service{repo: repo, events: events}
}

func (s *service) checkEvent(ctx context.Context, eventID uint) error {
	ok, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !ok {
		return ErrEventNotFound
	}
	return nil
}

func (s *service) AddComment(ctx context.Context, eventID uint, user *auth.User, content string, rating *int) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyText
	}
	if err := s.checkEvent(ctx, eventID); err != nil {
		return nil, err
	}
	c := &Comment{Content: content, Rating: rating, UserID: user.ID, EventID: eventID}
	if err := s.repo.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	c.User = *user
	return c, nil
}

func (s *service) AddFeedback(ctx context.Context, eventID uint, user *auth.User, text string) (*FeedBack, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := s.checkEvent(ctx, eventID); err != nil {
		return nil, err
	}
	f := &FeedBack{FeedbackText: text, UserID: user.ID, EventID: eventID}
	if err := s.repo.CreateFeedback(ctx, f); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	f.User = *user
	return f, nil
}

func (s *service) Comments(ctx context.Context, eventID uint) ([]Comment, error) {
	return s.repo.ListComments(ctx, eventID)
}

func (s *service) Feedback(ctx context.Context, eventID uint) ([]FeedBack, error) {
	return s.repo.ListFeedback(ctx, eventID)
}

func (s *service) AverageRating(comments []Comment) float64 {
	var sum, n int
	for _, c := range comments {
		if c.Rating != nil {
			sum += *c.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
