package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/utils"
)

var (
	ErrReceiverNotFound     = errors.New("receiver not found")
	ErrSelfMessage          = errors.New("cannot message yourself")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrLiveUnavailable      = errors.New("live notifications unavailable")
	ErrEventNotFound        = errors.New("event not found")
)

const defaultListLimit = 50

// UserLookup is satisfied by auth.Service.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*auth.User, error)
}

// Mailer sends the "you have a new message" email; utils.Mailer satisfies it.
type Mailer interface {
	SendMessageNotice(to, recipientName, senderName, link string) error
}

// EventChecker is satisfied by event.Service.
type EventChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type SendInput struct {
	ReceiverUsername string
	Content          string
	EventID          *uint
}

type Service interface {
	SendMessage(ctx context.Context, sender *auth.User, in SendInput) (*Message, error)
	Inbox(ctx context.Context, userID uint) ([]Message, error)
	Sent(ctx context.Context, userID uint) ([]Message, error)

	// Notify stores one notification for every user and then publishes it.
	Notify(ctx context.Context, text string, userIDs []uint) error
	Notifications(ctx context.Context, userID uint) ([]UserNotification, error)
	MarkSeen(ctx context.Context, id, userID uint) error
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	Live(ctx context.Context, userID uint) (<-chan string, func(), error)
}

// Options are the optional collaborators; nil members are skipped.
type Options struct {
	Mailer      Mailer
	Publisher   utils.EventPublisher
	Broadcaster Broadcaster
	Events      EventChecker
	BaseURL     string
}

type service struct {
	repo  Repository
	users UserLookup
	opts  Options
}

func NewService(repo Repository, users UserLookup, opts Options) Service {
	return &service{repo: repo, users: users, opts: opts}
}

// ===========================
// ✉️ Messages

func (s *service) SendMessage(ctx context.Context, sender *auth.User, in SendInput) (*Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	receiver, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(in.ReceiverUsername))
	if errors.Is(err, auth.ErrUserNotFound) {
		return nil, ErrReceiverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find receiver: %w", err)
	}
	if receiver.ID == sender.ID {
		return nil, ErrSelfMessage
	}
	if in.EventID != nil && s.opts.Events != nil {
		ok, err := s.opts.Events.Exists(ctx, *in.EventID)
		if err != nil {
			return nil, fmt.Errorf("check event: %w", err)
		}
		if !ok {
			return nil, ErrEventNotFound
		}
	}

	m := &Message{SenderID: sender.ID, ReceiverID: receiver.ID, EventID: in.EventID, MessageContent: content}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	m.Sender, m.Receiver = *sender, *receiver

	if err := s.Notify(ctx, "New message from "+sender.Username, []uint{receiver.ID}); err != nil {
		log.Printf("⚠️ Message notification for user %d: %v", receiver.ID, err)
	}
	s.mailNotice(sender, receiver)
	return m, nil
}

// mailNotice is best effort; the message is already stored.
func (s *service) mailNotice(sender, receiver *auth.User) {
	if s.opts.Mailer == nil || receiver.Email == "" {
		return
	}
	if err := s.opts.Mailer.SendMessageNotice(receiver.Email, receiver.DisplayName(), sender.DisplayName(), s.opts.BaseURL+"/messages"); err != nil {
		log.Printf("⚠️ Message mail to %s: %v", receiver.Email, err)
	}
}

func (s *service) Inbox(ctx context.Context, userID uint) ([]Message, error) {
	return s.repo.Inbox(ctx, userID, defaultListLimit)
}

func (s *service) Sent(ctx context.Context, userID uint) ([]Message, error) {
	return s.repo.Sent(ctx, userID, defaultListLimit)
}

// ===========================
// 🔔 Notifications

type notificationEvent struct {
	UserNotificationID uint      `json:"id"`
	NotificationID     uint      `json:"notification_id"`
	UserID             uint      `json:"user_id"`
	Text               string    `json:"text"`
	CreatedAt          time.Time `json:"created_at"`
}

func (s *service) Notify(ctx context.Context, text string, userIDs []uint) error {
	text = strings.TrimSpace(text)
	if text == "" || len(userIDs) == 0 {
		return nil
	}

	n := &Notification{NotificationText: text}
	items, err := s.repo.CreateNotification(ctx, n, userIDs)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	// delivery failures never undo the stored notification
	for _, item := range items {
		evt := notificationEvent{
			UserNotificationID: item.ID,
			NotificationID:     n.ID,
			UserID:             item.UserID,
			Text:               n.NotificationText,
			CreatedAt:          n.CreatedAt,
		}
		if s.opts.Publisher != nil {
			key := strconv.FormatUint(uint64(item.UserID), 10)
			if err := s.opts.Publisher.Publish(ctx, key, evt); err != nil {
				log.Printf("⚠️ Kafka publish for user %d: %v", item.UserID, err)
			}
		}
		if s.opts.Broadcaster != nil {
			payload, _ := json.Marshal(evt)
			if err := s.opts.Broadcaster.Publish(ctx, item.UserID, string(payload)); err != nil {
				log.Printf("⚠️ Live push for user %d: %v", item.UserID, err)
			}
		}
	}
	return nil
}

func (s *service) Notifications(ctx context.Context, userID uint) ([]UserNotification, error) {
	return s.repo.ListNotifications(ctx, userID, defaultListLimit)
}

func (s *service) MarkSeen(ctx context.Context, id, userID uint) error {
	return s.repo.MarkSeen(ctx, id, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnseen(ctx, userID)
}

func (s *service) Live(ctx context.Context, userID uint) (<-chan string, func(), error) {
	if s.opts.Broadcaster == nil {
		return nil, nil, ErrLiveUnavailable
	}
	return s.opts.Broadcaster.Subscribe(ctx, userID)
}
