// Package home serves the landing page and the health probe.
package home

import (
	"context"
	"log"
	"net/http"

	"github.com/amaturano/event-management/internal/event"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/gin-gonic/gin"
)

const landingEventCount = 6

type EventLister interface {
	Upcoming(ctx context.Context, f event.ListFilter) ([]event.Event, error)
}

type UnreadCounter interface {
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

// Check is a named dependency probe for /healthz.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	events        EventLister
	notifications UnreadCounter
	checks        []Check
}

func NewHandler(events EventLister, notifications UnreadCounter, checks ...Check) *Handler {
	return &Handler{events: events, notifications: notifications, checks: checks}
}

// GET /
func (h *Handler) Root(c *gin.Context) {
	c.Redirect(http.StatusFound, "/index/main-login")
}

// GET /index/main-login
func (h *Handler) Index(c *gin.Context) {
	ctx := c.Request.Context()

	events, err := h.events.Upcoming(ctx, event.ListFilter{Limit: landingEventCount})
	if err != nil {
		log.Printf("⚠️ Landing events: %v", err)
	}

	data := gin.H{"Title": "Home", "Events": events}
	if user := middleware.CurrentUser(c); user != nil && h.notifications != nil {
		unread, err := h.notifications.UnreadCount(ctx, user.ID)
		if err != nil {
			log.Printf("⚠️ Unread count for %d: %v", user.ID, err)
		}
		data["Unread"] = unread
	}
	web.Render(c, http.StatusOK, "index.html", data)
}

// GET /healthz
func (h *Handler) Healthz(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	for _, check := range h.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			deps[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[check.Name] = "OK"
	}

	overall := "OK"
	if status != http.StatusOK {
		overall = "DEGRADED"
	}
	c.JSON(status, gin.H{"status": overall, "dependencies": deps})
}
