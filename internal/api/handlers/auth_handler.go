package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/yatube/internal/auth"
	"github.com/isdelr/yatube/internal/forms"
	"github.com/isdelr/yatube/internal/services"
	"github.com/isdelr/yatube/internal/web"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	users        services.UserServiceProvider
	tokens       *auth.TokenManager
	render       *web.Renderer
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.TokenManager, rn *web.Renderer, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, render: rn, secureCookie: secureCookie}
}

// Signup registers a new account and sends the visitor to the index.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		render(w, r, h.render, http.StatusOK, web.PageSignup, &web.Data{
			Title:      "Sign up",
			SignupForm: forms.NewSignupForm(nil),
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.NewSignupForm(r.PostForm)
	if form.Validate() {
		user, err := h.users.CreateUser(form.Username, form.Email, form.Password)
		switch {
		case err == nil:
			log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
			redirect(w, r, "/")
			return
		case errors.Is(err, services.ErrUsernameTaken):
			form.Errors.Add("username", err.Error())
		default:
			serverError(w, r, err)
			return
		}
	}

	render(w, r, h.render, http.StatusOK, web.PageSignup, &web.Data{
		Title:      "Sign up",
		SignupForm: form,
	})
}

// Login checks the credentials and issues the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		form := forms.NewLoginForm(nil)
		form.Next = r.URL.Query().Get("next")
		render(w, r, h.render, http.StatusOK, web.PageLogin, &web.Data{Title: "Log in", LoginForm: form})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.NewLoginForm(r.PostForm)
	if form.Validate() {
		user, err := h.users.AuthenticateUser(form.Username, form.Password)
		switch {
		case err == nil:
			if err := h.tokens.SetCookie(w, user, h.secureCookie); err != nil {
				log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
				serverError(w, r, err)
				return
			}
			redirect(w, r, auth.SafeNext(form.Next, "/"))
			return
		case errors.Is(err, services.ErrInvalidLogin):
			log.Warn().Str("username", form.Username).Msg("Failed authentication attempt")
			form.Errors.Add("__all__", "Please enter a correct username and password.")
		default:
			serverError(w, r, err)
			return
		}
	}

	render(w, r, h.render, http.StatusOK, web.PageLogin, &web.Data{Title: "Log in", LoginForm: form})
}

// Logout drops the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	redirect(w, r, "/")
}
