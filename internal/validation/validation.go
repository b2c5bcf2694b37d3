// Package validation checks request payloads with go-playground/validator.
// Field names in errors follow the json tags so clients see the same keys
// they sent.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("personname", validatePersonName)
	_ = validate.RegisterValidation("image", validateImage)
	_ = validate.RegisterValidation("bcryptlen", validateBcryptLen)
}

// Error carries one message per failed field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks s and returns *Error when any rule fails.  Programming
// errors (non-struct input) are returned as-is.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("invalid validation input: %w", err)
	}
	out := &Error{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = message(fe)
		}
	}
	return out
}

// Field builds a single-field *Error, for checks done outside struct tags.
func Field(name, msg string) *Error {
	return &Error{Fields: map[string]string{name: msg}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "eqfield":
		return "must match " + lowerFirst(fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "personname":
		return "may contain only letters and spaces"
	case "image":
		return "must be a jpg, jpeg or png file"
	case "bcryptlen":
		return fmt.Sprintf("must be at most %d bytes long", MaxPasswordBytes)
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// validatePersonName accepts letters of any script and spaces, and at least
// one letter.
func validatePersonName(fl validator.FieldLevel) bool {
	letters := 0
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == ' ':
		default:
			return false
		}
	}
	return letters > 0
}

func validateImage(fl validator.FieldLevel) bool {
	switch strings.ToLower(filepath.Ext(fl.Field().String())) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

func validateBcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}
