package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/amaturano/event-management/internal/auditlog"
)

// fakeRepo enforces the same uniqueness rules as the users/user_profiles indexes.
type fakeRepo struct {
	mu       sync.Mutex
	users    []User
	profiles []UserProfile
	// hidePrecheck makes FindByUsername/FindByEmail miss, to simulate a concurrent insert.
	hidePrecheck bool
	updates      int
}

func (f *fakeRepo) Create(_ context.Context, u *User, p *UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.ID = uint(len(f.users) + 1)
	f.users = append(f.users, *u)
	if p != nil {
		p.UserID = u.ID
		f.profiles = append(f.profiles, *p)
	}
	return nil
}

func (f *fakeRepo) find(match func(User) bool) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) FindByID(_ context.Context, id uint) (*User, error) {
	return f.find(func(u User) bool { return u.ID == id })
}

func (f *fakeRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	if f.hidePrecheck {
		return nil, ErrUserNotFound
	}
	return f.find(func(u User) bool { return u.Username == username })
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if f.hidePrecheck {
		return nil, ErrUserNotFound
	}
	return f.find(func(u User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeRepo) Update(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == u.ID {
			f.users[i] = *u
			f.updates++
			return nil
		}
	}
	return ErrUserNotFound
}

type sentMail struct{ to, name, link string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordReset(to, name, link string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, name, link})
	return nil
}

type fakeAudit struct {
	actions []string
}

func (a *fakeAudit) LogAction(_ context.Context, _ *uint, action string, _ map[string]interface{}, _ string, _ string) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *fakeAudit) RecentForUser(context.Context, uint, int) ([]auditlog.AuditLog, error) {
	return nil, nil
}
