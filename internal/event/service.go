package event

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/amaturano/event-management/internal/auditlog"
	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/reports"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrNotOrganizer     = errors.New("only the organizer can do this")
	ErrNotAttending     = errors.New("not registered for this event")
	ErrInvalidDates     = errors.New("event finishes before it starts")
	// ErrDuplicate is a unique-index conflict lost to a concurrent request.
	ErrDuplicate = errors.New("already exists")
)

// Notifier fans a notification out to users; messaging.Service satisfies it.
type Notifier interface {
	Notify(ctx context.Context, text string, userIDs []uint) error
}

// ImageStore is satisfied by utils.ImageUpload.
type ImageStore interface {
	Save(file *multipart.FileHeader, prefix string) (string, error)
}

type CreateInput struct {
	Title        string
	Description  string
	StartDate    time.Time
	FinishDate   time.Time
	CategoryID   uint
	Latitude     *float64
	Longitude    *float64
	LocationName string
	Address      string
	Tags         []string
}

type Service interface {
	Categories(ctx context.Context) ([]Category, error)
	Upcoming(ctx context.Context, f ListFilter) ([]Event, error)
	GetEvent(ctx context.Context, id uint) (*Event, error)
	Exists(ctx context.Context, id uint) (bool, error)
	CreateEvent(ctx context.Context, organizer *auth.User, in CreateInput, ip string) (*Event, error)

	AddPhoto(ctx context.Context, eventID uint, user *auth.User, file *multipart.FileHeader) (*EventPhoto, error)
	AddSponsor(ctx context.Context, eventID uint, user *auth.User, name, logoURL string) (*EventSponsor, error)

	// Attend registers the user; it reports false when they already were.
	Attend(ctx context.Context, eventID uint, user *auth.User) (bool, error)
	IsAttending(ctx context.Context, eventID, userID uint) (bool, error)
	Attendees(ctx context.Context, eventID uint, user *auth.User) (*Event, []reports.AttendeeRow, error)
	Pass(ctx context.Context, eventID uint, user *auth.User) (*reports.Pass, error)
	CheckIn(ctx context.Context, eventID uint, organizer *auth.User, code string) (bool, error)

	// Subscribe reports false when the user was already subscribed.
	Subscribe(ctx context.Context, userID, categoryID uint) (*Category, bool, error)
}

type service struct {
	repo     Repository
	images   ImageStore
	notifier Notifier
	auditSvc auditlog.Service
	secret   []byte
	now      func() time.Time
}

func NewService(repo Repository, images ImageStore, notifier Notifier, auditSvc auditlog.Service, secret string) Service {
	return &service{repo: repo, images: images, notifier: notifier, auditSvc: auditSvc, secret: []byte(secret), now: time.Now}
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// Upcoming lists events that have not finished yet.
func (s *service) Upcoming(ctx context.Context, f ListFilter) ([]Event, error) {
	if f.From.IsZero() {
		f.From = s.now()
	}
	return s.repo.ListUpcoming(ctx, f)
}

func (s *service) GetEvent(ctx context.Context, id uint) (*Event, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountAttendees(ctx, id)
	if err != nil {
		return nil, err
	}
	e.AttendeeCount = int(count)
	return e, nil
}

func (s *service) Exists(ctx context.Context, id uint) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// ===========================
// 🎯 Create Event

func (s *service) CreateEvent(ctx context.Context, organizer *auth.User, in CreateInput, ip string) (*Event, error) {
	if in.FinishDate.Before(in.StartDate) {
		return nil, ErrInvalidDates
	}
	category, err := s.repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	e := &Event{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		StartDate:    in.StartDate,
		FinishDate:   in.FinishDate,
		CategoryID:   category.ID,
		OrganizerID:  organizer.ID,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		LocationName: strings.TrimSpace(in.LocationName),
		Address:      strings.TrimSpace(in.Address),
	}

	status := auditlog.StatusSuccess
	err = s.repo.Create(ctx, e, normalizeTags(in.Tags))
	if err != nil {
		status = auditlog.StatusFailure
	}
	if s.auditSvc != nil {
		_ = s.auditSvc.LogAction(ctx, &organizer.ID, auditlog.ActionEventCreated, map[string]interface{}{
			"event_id": e.ID,
			"title":    e.Title,
		}, ip, status)
	}
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	e.Category = *category
	e.Organizer = *organizer

	s.notifySubscribers(ctx, e)
	return e, nil
}

// notifySubscribers never fails event creation.
func (s *service) notifySubscribers(ctx context.Context, e *Event) {
	if s.notifier == nil {
		return
	}
	ids, err := s.repo.SubscriberIDs(ctx, e.CategoryID)
	if err != nil {
		log.Printf("⚠️ Subscribers of category %d: %v", e.CategoryID, err)
		return
	}
	recipients := ids[:0]
	for _, id := range ids {
		if id != e.OrganizerID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}
	text := fmt.Sprintf("New %s event: %s (%s)", e.Category.Name, e.Title, e.StartDate.Format("2006-01-02 15:04"))
	if err := s.notifier.Notify(ctx, text, recipients); err != nil {
		log.Printf("⚠️ Notify subscribers of event %d: %v", e.ID, err)
	}
}

// maxTagLength matches the varchar(50) column, counted in characters.
const maxTagLength = 50

// normalizeTags lowercases, trims and de-duplicates, keeping first-seen order.
func normalizeTags(raw []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if r := []rune(t); len(r) > maxTagLength {
			t = string(r[:maxTagLength])
		}
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ===========================
// 🖼 Photos & sponsors

func (s *service) organizerEvent(ctx context.Context, eventID uint, user *auth.User) (*Event, error) {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != user.ID {
		return nil, ErrNotOrganizer
	}
	return e, nil
}

func (s *service) AddPhoto(ctx context.Context, eventID uint, user *auth.User, file *multipart.FileHeader) (*EventPhoto, error) {
	if _, err := s.organizerEvent(ctx, eventID, user); err != nil {
		return nil, err
	}
	url, err := s.images.Save(file, "event"+strconv.FormatUint(uint64(eventID), 10))
	if err != nil {
		return nil, err
	}
	photo := &EventPhoto{EventID: eventID, PhotoURL: url}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("add photo: %w", err)
	}
	return photo, nil
}

func (s *service) AddSponsor(ctx context.Context, eventID uint, user *auth.User, name, logoURL string) (*EventSponsor, error) {
	if _, err := s.organizerEvent(ctx, eventID, user); err != nil {
		return nil, err
	}
	sponsor := &EventSponsor{EventID: eventID, SponsorName: strings.TrimSpace(name), SponsorLogo: strings.TrimSpace(logoURL)}
	if err := s.repo.AddSponsor(ctx, sponsor); err != nil {
		return nil, fmt.Errorf("add sponsor: %w", err)
	}
	return sponsor, nil
}

// ===========================
// 🙋 Attendance

func (s *service) Attend(ctx context.Context, eventID uint, user *auth.User) (bool, error) {
	ok, err := s.repo.Exists(ctx, eventID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrEventNotFound
	}

	existing, err := s.repo.FindAttendance(ctx, eventID, user.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	err = s.repo.AddAttendee(ctx, &AttendeeEvent{EventID: eventID, UserID: user.ID})
	if errors.Is(err, ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("add attendee: %w", err)
	}
	return true, nil
}

func (s *service) IsAttending(ctx context.Context, eventID, userID uint) (bool, error) {
	a, err := s.repo.FindAttendance(ctx, eventID, userID)
	return a != nil, err
}

func (s *service) Attendees(ctx context.Context, eventID uint, user *auth.User) (*Event, []reports.AttendeeRow, error) {
	e, err := s.organizerEvent(ctx, eventID, user)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.repo.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	rows := make([]reports.AttendeeRow, 0, len(list))
	for _, a := range list {
		fullName := strings.TrimSpace(a.User.Name + " " + a.User.Lastname)
		rows = append(rows, reports.AttendeeRow{
			Username:     a.User.Username,
			FullName:     fullName,
			Email:        a.User.Email,
			RegisteredAt: a.RegistrationDate,
		})
	}
	return e, rows, nil
}

func (s *service) Pass(ctx context.Context, eventID uint, user *auth.User) (*reports.Pass, error) {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.FindAttendance(ctx, eventID, user.ID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotAttending
	}
	return &reports.Pass{
		EventID:      e.ID,
		EventTitle:   e.Title,
		Category:     e.Category.Name,
		Location:     e.LocationName,
		Address:      e.Address,
		Start:        e.StartDate,
		Finish:       e.FinishDate,
		Holder:       user.DisplayName(),
		Username:     user.Username,
		RegisteredAt: a.RegistrationDate,
		Code:         s.passCode(e.ID, user.ID, a.ID),
	}, nil
}

// passCode is eventID|userID|attendanceID|signature.
func (s *service) passCode(eventID, userID, attendanceID uint) string {
	data := fmt.Sprintf("%d|%d|%d", eventID, userID, attendanceID)
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return data + "|" + base64.RawURLEncoding.EncodeToString(h.Sum(nil)[:12])
}

// CheckIn lets the organizer validate a pass code scanned at the door.
func (s *service) CheckIn(ctx context.Context, eventID uint, organizer *auth.User, code string) (bool, error) {
	if _, err := s.organizerEvent(ctx, eventID, organizer); err != nil {
		return false, err
	}
	parts := strings.Split(code, "|")
	if len(parts) != 4 {
		return false, nil
	}
	var ids [3]uint64
	for n := range ids {
		v, err := strconv.ParseUint(parts[n], 10, 64)
		if err != nil {
			return false, nil
		}
		ids[n] = v
	}
	if uint(ids[0]) != eventID || !hmac.Equal([]byte(s.passCode(eventID, uint(ids[1]), uint(ids[2]))), []byte(code)) {
		return false, nil
	}
	a, err := s.repo.FindAttendance(ctx, eventID, uint(ids[1]))
	if err != nil {
		return false, err
	}
	return a != nil && a.ID == uint(ids[2]), nil
}

// ===========================
// 🔔 Subscriptions

func (s *service) Subscribe(ctx context.Context, userID, categoryID uint) (*Category, bool, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, false, err
	}
	already, err := s.repo.IsSubscribed(ctx, userID, categoryID)
	if err != nil {
		return nil, false, err
	}
	if already {
		return category, false, nil
	}
	err = s.repo.Subscribe(ctx, &Subscription{UserID: userID, CategoryID: categoryID})
	if errors.Is(err, ErrDuplicate) {
		return category, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("subscribe: %w", err)
	}
	return category, true, nil
}
