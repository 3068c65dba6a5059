package forms

import "net/url"

// SignupForm is the registration form.
type SignupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email"`
	Password  string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`

	Errors Errors `form:"-" validate:"-"`
}

// NewSignupForm binds a submitted signup form. Passwords are taken verbatim.
func NewSignupForm(values url.Values) *SignupForm {
	return &SignupForm{
		Username:  value(values, "username"),
		Email:     value(values, "email"),
		Password:  values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    Errors{},
	}
}

func (f *SignupForm) Validate() bool {
	for field, msg := range check(f) {
		f.Errors.Add(field, msg)
	}
	return f.Errors.Valid()
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`

	Errors Errors `form:"-" validate:"-"`
}

func NewLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: value(values, "username"),
		Password: values.Get("password"),
		Next:     values.Get("next"),
		Errors:   Errors{},
	}
}

func (f *LoginForm) Validate() bool {
	for field, msg := range check(f) {
		f.Errors.Add(field, msg)
	}
	return f.Errors.Valid()
}
