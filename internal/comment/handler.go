package comment

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

type CommentForm struct {
	Content string `form:"content" binding:"required,max=2000"`
	Rating  string `form:"rating" binding:"omitempty,oneof=1 2 3 4 5"`
}

type FeedbackForm struct {
	FeedbackText string `form:"feedback_text" binding:"required,max=4000"`
}

func eventID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		web.RenderError(c, http.StatusNotFound, "Event not found.")
		return 0, false
	}
	return uint(id), true
}

func eventPath(id uint) string {
	return "/events/" + strconv.FormatUint(uint64(id), 10)
}

// POST /events/:id/comments
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	var form CommentForm
	if errs := forms.Bind(c, &form); errs.Any() {
		web.Redirect(c, eventPath(id)+"#comments", web.FlashError, "Comment not saved: "+errs.Error())
		return
	}
	var rating *int
	if form.Rating != "" {
		r, _ := strconv.Atoi(form.Rating)
		rating = &r
	}

	_, err := h.service.AddComment(c.Request.Context(), id, middleware.CurrentUser(c), form.Content, rating)
	if errors.Is(err, ErrEmptyText) {
		web.Redirect(c, eventPath(id)+"#comments", web.FlashError, "Comment not saved: content: This field is required.")
		return
	}
	if h.failed(c, err) {
		return
	}
	web.Redirect(c, eventPath(id)+"#comments", web.FlashSuccess, "Your comment has been posted")
}

// POST /events/:id/feedback
func (h *Handler) AddFeedback(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}

	var form FeedbackForm
	if errs := forms.Bind(c, &form); errs.Any() {
		web.Redirect(c, eventPath(id), web.FlashError, "Feedback not sent: "+errs.Error())
		return
	}

	_, err := h.service.AddFeedback(c.Request.Context(), id, middleware.CurrentUser(c), form.FeedbackText)
	if errors.Is(err, ErrEmptyText) {
		web.Redirect(c, eventPath(id), web.FlashError, "Feedback not sent: feedback_text: This field is required.")
		return
	}
	if h.failed(c, err) {
		return
	}
	web.Redirect(c, eventPath(id), web.FlashSuccess, "Thank you for your feedback")
}

func (h *Handler) failed(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrEventNotFound):
		web.RenderError(c, http.StatusNotFound, "Event not found.")
	default:
		log.Printf("❌ Comment on %s: %v", c.Request.URL.Path, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not save, please try again later.")
	}
	return true
}
