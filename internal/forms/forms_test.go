package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username        string `form:"username" binding:"required,max=50"`
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

func TestValidateOK(t *testing.T) {
	errs := Validate(signupForm{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	assert.False(t, errs.Any())
}

func TestValidateOrderedFieldErrors(t *testing.T) {
	errs := Validate(signupForm{
		Email:           "not-an-email",
		Password:        "abc",
		ConfirmPassword: "abd",
	})

	require.Len(t, errs, 4)
	assert.Equal(t, []string{"username", "email", "password", "confirm_password"},
		[]string{errs[0].Field, errs[1].Field, errs[2].Field, errs[3].Field})
	assert.Equal(t, "This field is required.", errs.Get("username"))
	assert.Equal(t, "Invalid email address.", errs.Get("email"))
	assert.Equal(t, "Must be at least 6 characters long.", errs.Get("password"))
	assert.Equal(t, "Must match password.", errs.Get("confirm_password"))
	assert.Empty(t, errs.Get("missing"))
}

func TestBindFromPostedForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"secret123"},
		"confirm_password": {"other"},
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var f signupForm
	errs := Bind(c, &f)

	assert.Equal(t, "alice", f.Username)
	require.Len(t, errs, 1)
	assert.Equal(t, "confirm_password", errs[0].Field)
}

func TestErrorsAdd(t *testing.T) {
	var errs Errors
	errs.Add("picture", "Images only.")
	assert.True(t, errs.Any())
	assert.Equal(t, "picture: Images only.", errs.Error())
}

func TestVarReportsUnderGivenField(t *testing.T) {
	assert.False(t, Var("website_url", "https://example.com", "url").Any())

	errs := Var("social_media_links", "not a url", "url")
	require.Len(t, errs, 1)
	assert.Equal(t, "social_media_links", errs[0].Field)
	assert.Equal(t, "Invalid URL.", errs[0].Message)
}

type nameForm struct {
	Name string `form:"name" binding:"max=100,singleline"`
}

func TestSingleLineRejectsControlCharacters(t *testing.T) {
	assert.False(t, Validate(nameForm{Name: "Zoë Dupont"}).Any())
	assert.False(t, Validate(nameForm{}).Any())

	for _, bad := range []string{"Eve\r\nBcc: victim@evil.test", "Eve\nX", "Eve\x00"} {
		errs := Validate(nameForm{Name: bad})
		require.Len(t, errs, 1, bad)
		assert.Equal(t, "name", errs[0].Field)
		assert.Equal(t, "Must not contain line breaks or control characters.", errs[0].Message)
	}
}
