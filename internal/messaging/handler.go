package messaging

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/amaturano/event-management/internal/forms"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type MessageForm struct {
	ReceiverUsername string `form:"receiver_username" binding:"required,max=50"`
	MessageContent   string `form:"message_content" binding:"required,max=5000"`
	EventID          string `form:"event_id" binding:"omitempty,numeric"`
}

func (f MessageForm) input() SendInput {
	in := SendInput{ReceiverUsername: f.ReceiverUsername, Content: f.MessageContent}
	if id, err := strconv.ParseUint(f.EventID, 10, 32); err == nil && id > 0 {
		eventID := uint(id)
		in.EventID = &eventID
	}
	return in
}

// GET /messages
func (h *Handler) ListMessages(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	inbox, err := h.service.Inbox(ctx, user.ID)
	if err != nil {
		log.Printf("❌ Inbox of %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not load your messages.")
		return
	}
	sent, err := h.service.Sent(ctx, user.ID)
	if err != nil {
		log.Printf("❌ Sent messages of %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not load your messages.")
		return
	}

	web.Render(c, http.StatusOK, "messages.html", gin.H{
		"Title": "Messages",
		"Inbox": inbox,
		"Sent":  sent,
	})
}

// GET /messages/new?to=&event=
func (h *Handler) NewMessagePage(c *gin.Context) {
	web.Render(c, http.StatusOK, "message_new.html", gin.H{
		"Title": "New message",
		"Form":  MessageForm{ReceiverUsername: c.Query("to"), EventID: c.Query("event")},
	})
}

// POST /messages/new
func (h *Handler) SendMessage(c *gin.Context) {
	var form MessageForm
	if errs := forms.Bind(c, &form); errs.Any() {
		h.renderInvalid(c, form, errs)
		return
	}

	user := middleware.CurrentUser(c)
	_, err := h.service.SendMessage(c.Request.Context(), user, form.input())
	var errs forms.Errors
	switch {
	case err == nil:
		web.Redirect(c, "/messages", web.FlashSuccess, "Message sent to "+form.ReceiverUsername)
		return
	case errors.Is(err, ErrReceiverNotFound):
		errs.Add("receiver_username", "No user with that username.")
	case errors.Is(err, ErrSelfMessage):
		errs.Add("receiver_username", "You cannot message yourself.")
	case errors.Is(err, ErrEmptyMessage):
		errs.Add("message_content", "This field is required.")
	case errors.Is(err, ErrEventNotFound):
		errs.Add("event_id", "No such event.")
	default:
		log.Printf("❌ Send message from %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not send the message.")
		return
	}
	h.renderInvalid(c, form, errs)
}

func (h *Handler) renderInvalid(c *gin.Context, form MessageForm, errs forms.Errors) {
	web.Render(c, http.StatusUnprocessableEntity, "message_new.html", gin.H{
		"Title":  "New message",
		"Form":   form,
		"Errors": errs,
	})
}

// ===========================
// 🔔 Notifications

// GET /notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)
	items, err := h.service.Notifications(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Notifications of %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not load your notifications.")
		return
	}
	web.Render(c, http.StatusOK, "notifications.html", gin.H{
		"Title":         "Notifications",
		"Notifications": items,
	})
}

// POST /notifications/:id/seen
func (h *Handler) MarkSeen(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		web.RenderError(c, http.StatusNotFound, "Notification not found.")
		return
	}
	user := middleware.CurrentUser(c)

	err = h.service.MarkSeen(c.Request.Context(), uint(id), user.ID)
	if errors.Is(err, ErrNotificationNotFound) {
		web.RenderError(c, http.StatusNotFound, "Notification not found.")
		return
	}
	if err != nil {
		log.Printf("❌ Mark notification %d seen: %v", id, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not update the notification.")
		return
	}
	web.Redirect(c, "/notifications", "", "")
}

// GET /notifications/unread
func (h *Handler) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	n, err := h.service.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// GET /notifications/stream (SSE)
func (h *Handler) Stream(c *gin.Context) {
	user := middleware.CurrentUser(c)

	ch, cancel, err := h.service.Live(c.Request.Context(), user.ID)
	if errors.Is(err, ErrLiveUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live notifications unavailable"})
		return
	}
	if err != nil {
		log.Printf("❌ Live notifications for %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("notification", payload)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
