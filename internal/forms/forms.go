// Package forms binds and validates the HTML forms submitted to the site.
package forms

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgRequired      = "This field is required."
	msgInvalidChoice = "Select a valid choice."
)

// Errors maps a form field name to its validation message.
type Errors map[string]string

// Add records msg for field unless the field already has an error.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Valid reports whether no errors were recorded.
func (e Errors) Valid() bool {
	return len(e) == 0
}

var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

// check runs the struct validator and translates failures into Errors.
func check(form any) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("__all__", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Enter a valid value."
	}
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
