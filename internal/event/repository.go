package event

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

type ListFilter struct {
	CategoryID uint
	Query      string
	From       time.Time
	Limit      int
}

type Repository interface {
	EnsureCategories(ctx context.Context, names []string) error
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uint) (*Category, error)

	// Create stores the event and links its tags, creating missing tags, in one transaction.
	Create(ctx context.Context, e *Event, tagNames []string) error
	GetByID(ctx context.Context, id uint) (*Event, error)
	Exists(ctx context.Context, id uint) (bool, error)
	ListUpcoming(ctx context.Context, f ListFilter) ([]Event, error)

	AddPhoto(ctx context.Context, p *EventPhoto) error
	AddSponsor(ctx context.Context, s *EventSponsor) error

	CountAttendees(ctx context.Context, eventID uint) (int64, error)
	FindAttendance(ctx context.Context, eventID, userID uint) (*AttendeeEvent, error)
	AddAttendee(ctx context.Context, a *AttendeeEvent) error
	ListAttendees(ctx context.Context, eventID uint) ([]AttendeeEvent, error)

	IsSubscribed(ctx context.Context, userID, categoryID uint) (bool, error)
	Subscribe(ctx context.Context, s *Subscription) error
	SubscriberIDs(ctx context.Context, categoryID uint) ([]uint, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ===========================
// 🗂 Categories

func (r *repository) EnsureCategories(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	cats := make([]Category, 0, len(names))
	for _, n := range names {
		cats = append(cats, Category{Name: n})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&cats).Error
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *repository) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var c Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ===========================
// 🎯 Events

func (r *repository) Create(ctx context.Context, e *Event, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(e).Error; err != nil {
			return err
		}
		for _, name := range tagNames {
			tag := Tag{Name: name}
			if err := tx.Where(Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			link := EventTag{EventID: e.ID, TagID: tag.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
			e.Tags = append(e.Tags, tag)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Organizer").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("uploaded_at ASC") }).
		Preload("Sponsors").
		Preload("Tags").
		First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) ListUpcoming(ctx context.Context, f ListFilter) ([]Event, error) {
	var events []Event

	query := r.db.WithContext(ctx).Preload("Category").Where("finish_date >= ?", f.From)
	if f.CategoryID != 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		ilike := "%" + q + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR location_name ILIKE ?", ilike, ilike, ilike)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) AddPhoto(ctx context.Context, p *EventPhoto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) AddSponsor(ctx context.Context, s *EventSponsor) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ===========================
// 🙋 Attendance

func (r *repository) CountAttendees(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AttendeeEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

// FindAttendance returns nil, nil when the user is not registered.
func (r *repository) FindAttendance(ctx context.Context, eventID, userID uint) (*AttendeeEvent, error) {
	var a AttendeeEvent
	err := r.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AddAttendee returns ErrDuplicate when the user is already registered.
func (r *repository) AddAttendee(ctx context.Context, a *AttendeeEvent) error {
	return duplicateError(r.db.WithContext(ctx).Omit("User").Create(a).Error)
}

func (r *repository) ListAttendees(ctx context.Context, eventID uint) ([]AttendeeEvent, error) {
	var list []AttendeeEvent
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("registration_date ASC").
		Find(&list).Error
	return list, err
}

// ===========================
// 🔔 Subscriptions

func (r *repository) IsSubscribed(ctx context.Context, userID, categoryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Subscription{}).
		Where("user_id = ? AND category_id = ?", userID, categoryID).
		Count(&count).Error
	return count > 0, err
}

// Subscribe returns ErrDuplicate when the subscription already exists.
func (r *repository) Subscribe(ctx context.Context, s *Subscription) error {
	return duplicateError(r.db.WithContext(ctx).Create(s).Error)
}

func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *repository) SubscriberIDs(ctx context.Context, categoryID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&Subscription{}).
		Where("category_id = ?", categoryID).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}
