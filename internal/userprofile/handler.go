package userprofile

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/amaturano/event-management/internal/auth"
	"github.com/amaturano/event-management/internal/forms"
	"github.com/amaturano/event-management/internal/web"
	"github.com/amaturano/event-management/middleware"
	"github.com/amaturano/event-management/utils"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{service: s}
}

type ProfileForm struct {
	Name             string `form:"name" binding:"max=100,singleline"`
	Lastname         string `form:"lastname" binding:"max=100,singleline"`
	Bio              string `form:"bio" binding:"max=1000"`
	WebsiteURL       string `form:"website_url" binding:"omitempty,url,max=255"`
	SocialMediaLinks string `form:"social_media_links"`
}

func formFromProfile(u *auth.User, p *auth.UserProfile) ProfileForm {
	return ProfileForm{
		Name:             u.Name,
		Lastname:         u.Lastname,
		Bio:              p.Bio,
		WebsiteURL:       p.WebsiteURL,
		SocialMediaLinks: strings.Join(p.SocialMediaLinks, "\n"),
	}
}

// splitLinks accepts one URL per line or comma separated.
func splitLinks(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' })
	links := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			links = append(links, f)
		}
	}
	return links
}

// GET /auth/profile
func (h *Handler) ViewProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, err := h.service.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Load profile %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not load your profile.")
		return
	}
	activity, err := h.service.RecentActivity(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("⚠️ Load activity %d: %v", user.ID, err)
	}

	web.Render(c, http.StatusOK, "profile.html", gin.H{
		"Title":    "Profile",
		"User":     user,
		"Profile":  profile,
		"Activity": activity,
	})
}

// GET /auth/update_profile
func (h *Handler) UpdateProfilePage(c *gin.Context) {
	user := middleware.CurrentUser(c)
	profile, err := h.service.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		log.Printf("❌ Load profile %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not load your profile.")
		return
	}
	web.Render(c, http.StatusOK, "update_profile.html", gin.H{
		"Title":   "Update profile",
		"Form":    formFromProfile(user, profile),
		"Profile": profile,
	})
}

// POST /auth/update_profile (multipart)
func (h *Handler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var form ProfileForm
	errs := forms.Bind(c, &form)

	links := splitLinks(form.SocialMediaLinks)
	for _, link := range links {
		if e := forms.Var("social_media_links", link, "url"); e.Any() {
			errs.Add("social_media_links", "Invalid URL: "+link)
			break
		}
	}

	picture, err := c.FormFile("picture")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		errs.Add("picture", "Could not read the uploaded file.")
	}
	if picture != nil && picture.Size == 0 && picture.Filename == "" {
		picture = nil
	}

	in := ProfileInput{
		Name:             form.Name,
		Lastname:         form.Lastname,
		Bio:              form.Bio,
		WebsiteURL:       form.WebsiteURL,
		SocialMediaLinks: links,
		Picture:          picture,
	}
	if errs.Any() {
		h.renderInvalid(c, form, errs)
		return
	}

	_, err = h.service.UpdateProfile(c.Request.Context(), user, in, middleware.GetIPFromContext(c))
	switch {
	case errors.Is(err, utils.ErrUnsupportedImage):
		errs.Add("picture", "Images only: "+strings.Join(utils.AllowedImageExtensions, ", ")+".")
		h.renderInvalid(c, form, errs)
		return
	case errors.Is(err, utils.ErrFileTooLarge):
		errs.Add("picture", "The file is too large.")
		h.renderInvalid(c, form, errs)
		return
	case err != nil:
		log.Printf("❌ Update profile %d: %v", user.ID, err)
		web.RenderError(c, http.StatusInternalServerError, "Could not update your profile.")
		return
	}

	web.Redirect(c, "/auth/profile", web.FlashSuccess, "Your profile has been updated")
}

func (h *Handler) renderInvalid(c *gin.Context, form ProfileForm, errs forms.Errors) {
	profile, _ := h.service.GetProfile(c.Request.Context(), middleware.CurrentUser(c).ID)
	web.Render(c, http.StatusUnprocessableEntity, "update_profile.html", gin.H{
		"Title":   "Update profile",
		"Form":    form,
		"Profile": profile,
		"Errors":  errs,
	})
}
