// Package forms turns bound request structs into ordered, field-level validation errors.
//
// Form structs declare their rules with gin `binding` tags; the field name reported in an
// error is the struct's `form` tag so templates can place the message next to the input.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string
	Message string
}

// Errors is ordered by struct field declaration.
type Errors []FieldError

func (e Errors) Any() bool { return len(e) > 0 }

// Get returns the first message for a field, or "".
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Add appends an error that no tag can express (e.g. an upload check).
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(formTagName)
		_ = v.RegisterValidation("singleline", singleLine)
	}
}

// singleLine rejects control characters, CR and LF included, in values that end up
// in mail headers.
func singleLine(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
}

func formTagName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Validate runs the binding rules of v and never touches a request.
func Validate(v any) Errors {
	return translate(binding.Validator.ValidateStruct(v))
}

// Var validates a single value, e.g. one line of a multi-value textarea, and reports
// failures under field.
func Var(field string, value any, tag string) Errors {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	errs := translate(v.Var(value, tag))
	for i := range errs {
		errs[i].Field = field
	}
	return errs
}

// Bind decodes the request body (urlencoded or multipart) into v and validates it.
func Bind(c *gin.Context, v any) Errors {
	return translate(c.ShouldBind(v))
}

func translate(err error) Errors {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(Errors, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}
	// decode failures (bad number, bad time layout) are not per-field in gin
	return Errors{{Field: "", Message: "Invalid form submission: " + err.Error()}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
	case "eqfield":
		return fmt.Sprintf("Must match %s.", humanize(fe.Param()))
	case "gtefield":
		return fmt.Sprintf("Must not be before %s.", humanize(fe.Param()))
	case "url":
		return "Invalid URL."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	case "singleline":
		return "Must not contain line breaks or control characters."
	case "latitude", "longitude":
		return "Invalid coordinate."
	case "gte", "lte":
		return fmt.Sprintf("Value out of range (%s %s).", fe.Tag(), fe.Param())
	default:
		return "Invalid value."
	}
}

// humanize turns a struct field name such as StartDate into "start date".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
