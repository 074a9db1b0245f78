package messaging

import (
	"context"
	"sort"
	"time"

	"github.com/amaturano/event-management/internal/auth"
)

type memRepo struct {
	messages      []Message
	notifications []Notification
	items         []UserNotification
	nextID        uint
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memRepo) CreateMessage(_ context.Context, m *Message) error {
	m.ID = r.id()
	m.SentAt = time.Date(2026, 5, 1, 12, 0, 0, int(m.ID), time.UTC)
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memRepo) filter(keep func(Message) bool, limit int) []Message {
	var out []Message
	for _, m := range r.messages {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memRepo) Inbox(_ context.Context, userID uint, limit int) ([]Message, error) {
	return r.filter(func(m Message) bool { return m.ReceiverID == userID }, limit), nil
}

func (r *memRepo) Sent(_ context.Context, userID uint, limit int) ([]Message, error) {
	return r.filter(func(m Message) bool { return m.SenderID == userID }, limit), nil
}

func (r *memRepo) CreateNotification(_ context.Context, n *Notification, userIDs []uint) ([]UserNotification, error) {
	n.ID = r.id()
	n.CreatedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	r.notifications = append(r.notifications, *n)
	var out []UserNotification
	for _, uid := range userIDs {
		item := UserNotification{ID: r.id(), UserID: uid, NotificationID: n.ID, Notification: *n}
		r.items = append(r.items, item)
		out = append(out, item)
	}
	return out, nil
}

func (r *memRepo) ListNotifications(_ context.Context, userID uint, limit int) ([]UserNotification, error) {
	var out []UserNotification
	for _, it := range r.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) MarkSeen(_ context.Context, id, userID uint) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Seen = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *memRepo) CountUnseen(_ context.Context, userID uint) (int64, error) {
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.Seen {
			n++
		}
	}
	return n, nil
}

type stubUsers struct {
	auth.Service
	users []*auth.User
}

func (s stubUsers) GetUserByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s stubUsers) GetUserByID(_ context.Context, id uint) (*auth.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

type published struct {
	key     string
	payload interface{}
}

type fakePublisher struct {
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.events = append(p.events, published{key: key, payload: payload})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeBroadcaster struct {
	pushed map[uint][]string
}

func (b *fakeBroadcaster) Publish(_ context.Context, userID uint, payload string) error {
	if b.pushed == nil {
		b.pushed = map[uint][]string{}
	}
	b.pushed[userID] = append(b.pushed[userID], payload)
	return nil
}

func (b *fakeBroadcaster) Subscribe(context.Context, uint) (<-chan string, func(), error) {
	ch := make(chan string)
	close(ch)
	return ch, func() {}, nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) SendMessageNotice(to, _, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

type stubEvents map[uint]bool

func (s stubEvents) Exists(_ context.Context, id uint) (bool, error) { return s[id], nil }
