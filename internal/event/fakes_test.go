package event

import (
	"context"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/amaturano/event-management/internal/auditlog"
	"github.com/amaturano/event-management/internal/auth"
)

type memRepo struct {
	categories    map[uint]Category
	events        map[uint]*Event
	attendees     []AttendeeEvent
	subscriptions []Subscription
	users         map[uint]auth.User
	nextID        uint
	// stale makes the existence lookups miss, as a request racing another one would.
	stale bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[uint]Category{1: {ID: 1, Name: "Music"}, 2: {ID: 2, Name: "Sports"}},
		events:     map[uint]*Event{},
		users:      map[uint]auth.User{},
	}
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memRepo) EnsureCategories(_ context.Context, names []string) error {
	for _, n := range names {
		found := false
		for _, c := range r.categories {
			found = found || c.Name == n
		}
		if !found {
			id := uint(len(r.categories) + 1)
			r.categories[id] = Category{ID: id, Name: n}
		}
	}
	return nil
}

func (r *memRepo) ListCategories(context.Context) ([]Category, error) {
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) GetCategory(_ context.Context, id uint) (*Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	return &c, nil
}

func (r *memRepo) Create(_ context.Context, e *Event, tagNames []string) error {
	e.ID = r.id()
	for _, n := range tagNames {
		e.Tags = append(e.Tags, Tag{ID: r.id(), Name: n})
	}
	e.Category = r.categories[e.CategoryID]
	e.Organizer = r.users[e.OrganizerID]
	r.events[e.ID] = e
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uint) (*Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memRepo) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := r.events[id]
	return ok, nil
}

func (r *memRepo) ListUpcoming(_ context.Context, f ListFilter) ([]Event, error) {
	var out []Event
	for _, e := range r.events {
		if e.FinishDate.Before(f.From) {
			continue
		}
		if f.CategoryID != 0 && e.CategoryID != f.CategoryID {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *memRepo) AddPhoto(_ context.Context, p *EventPhoto) error {
	p.ID = r.id()
	e := r.events[p.EventID]
	e.Photos = append(e.Photos, *p)
	return nil
}

func (r *memRepo) AddSponsor(_ context.Context, s *EventSponsor) error {
	s.ID = r.id()
	e := r.events[s.EventID]
	e.Sponsors = append(e.Sponsors, *s)
	return nil
}

func (r *memRepo) CountAttendees(_ context.Context, eventID uint) (int64, error) {
	var n int64
	for _, a := range r.attendees {
		if a.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) FindAttendance(_ context.Context, eventID, userID uint) (*AttendeeEvent, error) {
	if r.stale {
		return nil, nil
	}
	for _, a := range r.attendees {
		if a.EventID == eventID && a.UserID == userID {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) AddAttendee(_ context.Context, a *AttendeeEvent) error {
	for _, existing := range r.attendees {
		if existing.EventID == a.EventID && existing.UserID == a.UserID {
			return ErrDuplicate
		}
	}
	a.ID = r.id()
	a.RegistrationDate = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	r.attendees = append(r.attendees, *a)
	return nil
}

func (r *memRepo) ListAttendees(_ context.Context, eventID uint) ([]AttendeeEvent, error) {
	var out []AttendeeEvent
	for _, a := range r.attendees {
		if a.EventID == eventID {
			a.User = r.users[a.UserID]
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) IsSubscribed(_ context.Context, userID, categoryID uint) (bool, error) {
	if r.stale {
		return false, nil
	}
	for _, s := range r.subscriptions {
		if s.UserID == userID && s.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Subscribe(_ context.Context, s *Subscription) error {
	for _, existing := range r.subscriptions {
		if existing.UserID == s.UserID && existing.CategoryID == s.CategoryID {
			return ErrDuplicate
		}
	}
	s.ID = r.id()
	r.subscriptions = append(r.subscriptions, *s)
	return nil
}

func (r *memRepo) SubscriberIDs(_ context.Context, categoryID uint) ([]uint, error) {
	var ids []uint
	for _, s := range r.subscriptions {
		if s.CategoryID == categoryID {
			ids = append(ids, s.UserID)
		}
	}
	return ids, nil
}

type recordingNotifier struct {
	texts      []string
	recipients [][]uint
}

func (n *recordingNotifier) Notify(_ context.Context, text string, userIDs []uint) error {
	n.texts = append(n.texts, text)
	n.recipients = append(n.recipients, append([]uint(nil), userIDs...))
	return nil
}

type stubImages struct {
	saved []string
	err   error
}

func (s *stubImages) Save(file *multipart.FileHeader, prefix string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	url := "/uploads/" + prefix + "_" + file.Filename
	s.saved = append(s.saved, url)
	return url, nil
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
