package event

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amaturano/event-management/internal/comment"
	"github.com/amaturano/event-management/internal/forms"
	"github.com/amaturano/event-management/internal/reports"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/amaturano/event-management/utils"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service  Service
	comments comment.Service
	exporter reports.Exporter
}

func NewHandler(s Service, comments comment.Service, exporter reports.Exporter) *Handler {
	return &Handler{service: s, comments: comments, exporter: exporter}
}

type EventForm struct {
	Title        string    `form:"title" binding:"required,max=200"`
	Description  string    `form:"description" binding:"max=5000"`
	StartDate    time.Time `form:"start_date" time_format:"2006-01-02T15:04" binding:"required"`
	FinishDate   time.Time `form:"finish_date" time_format:"2006-01-02T15:04" binding:"required,gtefield=StartDate"`
	CategoryID   uint      `form:"category_id" binding:"required"`
	Latitude     string    `form:"latitude" binding:"omitempty,latitude"`
	Longitude    string    `form:"longitude" binding:"omitempty,longitude"`
	LocationName string    `form:"location_name" binding:"max=200"`
	Address      string    `form:"address" binding:"max=255"`
	Tags         string    `form:"tags" binding:"max=500"`
}

func (f EventForm) input() CreateInput {
	return CreateInput{
		Title:        f.Title,
		Description:  f.Description,
		StartDate:    f.StartDate,
		FinishDate:   f.FinishDate,
		CategoryID:   f.CategoryID,
		Latitude:     parseCoordinate(f.Latitude),
		Longitude:    parseCoordinate(f.Longitude),
		LocationName: f.LocationName,
		Address:      f.Address,
		Tags:         strings.Split(f.Tags, ","),
	}
}

// parseCoordinate expects a value already checked by the latitude/longitude rules.
func parseCoordinate(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

type SponsorForm struct {
	SponsorName string `form:"sponsor_name" binding:"required,max=100"`
	SponsorLogo string `form:"sponsor_logo" binding:"omitempty,url,max=255"`
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		web.RenderError(c, http.StatusNotFound, "Page not found.")
		return 0, false
	}
	return uint(id), true
}

func eventPath(id uint) string {
	return "/events/" + strconv.FormatUint(uint64(id), 10)
}

// ===========================
// 📄 List Events - GET /events?category=&q=
func (h *Handler) ListEvents(c *gin.Context) {
	var f ListFilter
	if raw := c.Query("category"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			f.CategoryID = uint(id)
		}
	}
	f.Query = strings.TrimSpace(c.Query("q"))

	events, err := h.service.Upcoming(c.Request.Context(), f)
	if err != nil {
		log.Printf("❌ List events: %v", err)
		web.RenderError(c, http.StatusInternalServerError, "Could not load events.")
		return
	}
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		log.Printf("⚠️ List categories: %v", err)
	}

	web.Render(c, http.StatusOK, "events.html", gin.H{
		"Title":      "Upcoming events",
		"Events":     events,
		"Categories": categories,
		"CategoryID": f.CategoryID,
		"Query":      f.Query,
	})
}

// ===========================
// 🔍 Event Page - GET /events/:id
func (h *Handler) ShowEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	e, err := h.service.GetEvent(ctx, id)
	if h.failed(c, err) {
		return
	}

	comments, err := h.comments.Comments(ctx, id)
	if err != nil {
		log.Printf("⚠️ Comments of event %d: %v", id, err)
	}

	data := gin.H{
		"Title":         e.Title,
		"Event":         e,
		"Comments":      comments,
		"AverageRating": h.comments.AverageRating(comments),
		"Form":          comment.CommentForm{},
	}

	if user := middleware.CurrentUser(c); user != nil {
		attending, err := h.service.IsAttending(ctx, id, user.ID)
		if err != nil {
			log.Printf("⚠️ Attendance of user %d on event %d: %v", user.ID, id, err)
		}
		isOrganizer := e.OrganizerID == user.ID
		data["Attending"] = attending
		data["IsOrganizer"] = isOrganizer
		if isOrganizer {
			feedback, err := h.comments.Feedback(ctx, id)
			if err != nil {
				log.Printf("⚠️ Feedback of event %d: %v", id, err)
			}
			data["Feedback"] = feedback
		}
	}

	web.Render(c, http.StatusOK, "event.html", data)
}

// ===========================
// 🎯 Create Event - GET|POST /events/new
func (h *Handler) NewEventPage(c *gin.Context) {
	h.renderForm(c, http.StatusOK, EventForm{}, nil)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var form EventForm
	if errs := forms.Bind(c, &form); errs.Any() {
		h.renderForm(c, http.StatusUnprocessableEntity, form, errs)
		return
	}

	user := middleware.CurrentUser(c)
	e, err := h.service.CreateEvent(c.Request.Context(), user, form.input(), middleware.GetIPFromContext(c))
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		var errs forms.Errors
		errs.Add("category_id", "Choose a category.")
		h.renderForm(c, http.StatusUnprocessableEntity, form, errs)
		return
	case errors.Is(err, ErrInvalidDates):
		var errs forms.Errors
		errs.Add("finish_date", "Must not be before start date.")
		h.renderForm(c, http.StatusUnprocessableEntity, form, errs)
		return
	case err != nil:
		log.Printf("❌ Create event by %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not create the event.")
		return
	}

	log.Printf("✅ Event %d created by %s", e.ID, user.Username)
	web.Redirect(c, eventPath(e.ID), web.FlashSuccess, "Event created")
}

func (h *Handler) renderForm(c *gin.Context, status int, form EventForm, errs forms.Errors) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		log.Printf("⚠️ List categories: %v", err)
	}
	web.Render(c, status, "event_new.html", gin.H{
		"Title":      "New event",
		"Form":       form,
		"Errors":     errs,
		"Categories": categories,
	})
}

// ===========================
// 🙋 Attend - POST /events/:id/attend
func (h *Handler) Attend(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	added, err := h.service.Attend(c.Request.Context(), id, middleware.CurrentUser(c))
	if h.failed(c, err) {
		return
	}
	if !added {
		web.Redirect(c, eventPath(id), web.FlashInfo, "You are already registered for this event")
		return
	}
	web.Redirect(c, eventPath(id), web.FlashSuccess, "You are registered for this event")
}

// ===========================
// 🖼 Photos & Sponsors (organizer)
func (h *Handler) AddPhoto(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		web.Redirect(c, eventPath(id), web.FlashError, "Choose a photo to upload.")
		return
	}

	_, err = h.service.AddPhoto(c.Request.Context(), id, middleware.CurrentUser(c), file)
	switch {
	case errors.Is(err, utils.ErrUnsupportedImage):
		web.Redirect(c, eventPath(id), web.FlashError, "Images only: "+strings.Join(utils.AllowedImageExtensions, ", ")+".")
		return
	case errors.Is(err, utils.ErrFileTooLarge):
		web.Redirect(c, eventPath(id), web.FlashError, "The file is too large.")
		return
	case h.failed(c, err):
		return
	}
	web.Redirect(c, eventPath(id), web.FlashSuccess, "Photo added")
}

func (h *Handler) AddSponsor(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var form SponsorForm
	if errs := forms.Bind(c, &form); errs.Any() {
		web.Redirect(c, eventPath(id), web.FlashError, "Sponsor not added: "+errs.Error())
		return
	}
	_, err := h.service.AddSponsor(c.Request.Context(), id, middleware.CurrentUser(c), form.SponsorName, form.SponsorLogo)
	if h.failed(c, err) {
		return
	}
	web.Redirect(c, eventPath(id), web.FlashSuccess, "Sponsor added")
}

// ===========================
// 📊 Exports

// GET /events/:id/attendees.xlsx
func (h *Handler) AttendeesExcel(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	e, rows, err := h.service.Attendees(c.Request.Context(), id, middleware.CurrentUser(c))
	if h.failed(c, err) {
		return
	}
	data, err := h.exporter.AttendeesExcel(e.Title, rows)
	if err != nil {
		log.Printf("❌ Export attendees of event %d: %v", id, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not export attendees.")
		return
	}
	attachment(c, fmt.Sprintf("event_%d_attendees.xlsx", id),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GET /events/:id/attendees.csv
func (h *Handler) AttendeesCSV(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	_, rows, err := h.service.Attendees(c.Request.Context(), id, middleware.CurrentUser(c))
	if h.failed(c, err) {
		return
	}
	data, err := h.exporter.AttendeesCSV(rows)
	if err != nil {
		log.Printf("❌ Export attendees of event %d: %v", id, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not export attendees.")
		return
	}
	attachment(c, fmt.Sprintf("event_%d_attendees.csv", id), "text/csv", data)
}

// GET /events/:id/pass.pdf
func (h *Handler) Pass(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	pass, err := h.service.Pass(c.Request.Context(), id, middleware.CurrentUser(c))
	if h.failed(c, err) {
		return
	}
	data, err := h.exporter.AttendeePass(*pass)
	if err != nil {
		log.Printf("❌ Pass for event %d: %v", id, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not generate your pass.")
		return
	}
	attachment(c, fmt.Sprintf("event_%d_pass.pdf", id), "application/pdf", data)
}

// GET /events/:id/checkin?code=
func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	valid, err := h.service.CheckIn(c.Request.Context(), id, middleware.CurrentUser(c), c.Query("code"))
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case errors.Is(err, ErrNotOrganizer):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the organizer can check attendees in"})
		default:
			log.Printf("❌ Check-in on event %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "check-in failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": id, "valid": valid})
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ===========================
// 🔔 Subscribe - POST /categories/:id/subscribe
func (h *Handler) Subscribe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	category, added, err := h.service.Subscribe(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if errors.Is(err, ErrCategoryNotFound) {
		web.RenderError(c, http.StatusNotFound, "Category not found.")
		return
	}
	if h.failed(c, err) {
		return
	}

	back := "/events?category=" + strconv.FormatUint(uint64(id), 10)
	if !added {
		web.Redirect(c, back, web.FlashInfo, "You are already subscribed to "+category.Name)
		return
	}
	web.Redirect(c, back, web.FlashSuccess, "You will be notified about new "+category.Name+" events")
}

func (h *Handler) failed(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrEventNotFound):
		web.RenderError(c, http.StatusNotFound, "Event not found.")
	case errors.Is(err, ErrNotOrganizer):
		web.RenderError(c, http.StatusForbidden, "Only the organizer can do this.")
	case errors.Is(err, ErrNotAttending):
		web.RenderError(c, http.StatusForbidden, "You are not registered for this event.")
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		web.RenderError(c, http.StatusInternalServerError, "Something went wrong, please try again later.")
	}
	return true
}
