package comment

import (
	"context"
	"errors"
	"time"

	"github.com/amaturano/event-management/internal/auth"
)

type memRepo struct {
	comments []Comment
	feedback []FeedBack
	users    map[uint]auth.User
	failWith error
}

func newMemRepo(users ...*auth.User) *memRepo {
	r := &memRepo{users: map[uint]auth.User{}}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

func (r *memRepo) CreateComment(_ context.Context, c *Comment) error {
	if r.failWith != nil {
		return r.failWith
	}
	c.ID = uint(len(r.comments) + 1)
	c.CreatedAt = time.Now()
	r.comments = append(r.comments, *c)
	return nil
}

func (r *memRepo) ListComments(_ context.Context, eventID uint) ([]Comment, error) {
	var out []Comment
	for i := len(r.comments) - 1; i >= 0; i-- {
		if c := r.comments[i]; c.EventID == eventID {
			c.User = r.users[c.UserID]
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memRepo) CreateFeedback(_ context.Context, f *FeedBack) error {
	if r.failWith != nil {
		return r.failWith
	}
	f.ID = uint(len(r.feedback) + 1)
	f.CreatedAt = time.Now()
	r.feedback = append(r.feedback, *f)
	return nil
}

func (r *memRepo) ListFeedback(_ context.Context, eventID uint) ([]FeedBack, error) {
	var out []FeedBack
	for i := len(r.feedback) - 1; i >= 0; i-- {
		if f := r.feedback[i]; f.EventID == eventID {
			f.User = r.users[f.UserID]
			out = append(out, f)
		}
	}
	return out, nil
}

// knownEvents answers Exists from a fixed id set.
type knownEvents map[uint]bool

func (k knownEvents) Exists(_ context.Context, id uint) (bool, error) {
	return k[id], nil
}

type brokenEvents struct{}

func (brokenEvents) Exists(context.Context, uint) (bool, error) {
	return false, errors.New("connection refused")
}

var (
	alice = &auth.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	bob   = &auth.User{ID: 2, Username: "bob", Email: "bob@example.com"}
)

func intPtr(v int) *int { return &v }
