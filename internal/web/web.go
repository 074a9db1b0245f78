package web

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/amaturano/event-management/internal/forms"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	flashCookie     = "flash"
	flashContextKey = "flashes"
)

// Flash categories understood by layout.html.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

var funcMap = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	// datetimeLocal fills <input type="datetime-local">.
	"datetimeLocal": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02T15:04")
	},
	"lower": strings.ToLower,
	// fieldError tolerates a missing Errors key in the page data.
	"fieldError": func(errs any, field string) string {
		e, _ := errs.(forms.Errors)
		return e.Get(field)
	},
	"deref": func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	},
}

// Templates parses every page and partial into one set; pages are addressed by file name
// and share the "header" and "footer" blocks of layout.html.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}

// Load installs the embedded templates on the engine.
func Load(r *gin.Engine) {
	r.SetHTMLTemplate(Templates())
}

// Flashes moves the flash cookie of the incoming request into the gin context.
func Flashes() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
			c.Set(flashContextKey, decodeFlashes(raw))
		}
		c.Next()
	}
}

// AddFlash queues a message for the next rendered page, whether it is rendered in this
// request or after a redirect.
func AddFlash(c *gin.Context, category, message string) {
	pending := append(pendingFlashes(c), Flash{Category: category, Message: message})
	c.Set(flashContextKey, pending)
	setFlashCookie(c, encodeFlashes(pending), 0)
}

// PendingFlashes returns the queued messages without consuming them.
func PendingFlashes(c *gin.Context) []Flash {
	return pendingFlashes(c)
}

// Render writes an HTML page with the shared layout data and consumes pending flashes.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = pendingFlashes(c)
	if user, ok := c.Get("user"); ok {
		data["CurrentUser"] = user
	}
	if _, ok := c.Get(flashContextKey); ok {
		c.Set(flashContextKey, []Flash(nil))
		setFlashCookie(c, "", -1)
	}
	c.HTML(status, name, data)
}

// Redirect flashes a message and redirects with 303 so a POST is not replayed.
func Redirect(c *gin.Context, location, category, message string) {
	if message != "" {
		AddFlash(c, category, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}

// RenderError is the generic page for infrastructure failures.
func RenderError(c *gin.Context, status int, message string) {
	Render(c, status, "error.html", gin.H{"Title": http.StatusText(status), "Message": message})
}

func pendingFlashes(c *gin.Context) []Flash {
	v, ok := c.Get(flashContextKey)
	if !ok {
		return nil
	}
	fs, _ := v.([]Flash)
	return fs
}

func setFlashCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func encodeFlashes(fs []Flash) string {
	b, _ := json.Marshal(fs)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeFlashes(raw string) []Flash {
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var fs []Flash
	if err := json.Unmarshal(b, &fs); err != nil {
		return nil
	}
	return fs
}
