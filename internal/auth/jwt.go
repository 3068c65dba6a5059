package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/yatube/internal/models"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// LoginURL is where anonymous users are sent by RequireUser.
const LoginURL = "/auth/login/"

const tokenTTL = 24 * time.Hour

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type contextKey string

const userKey = contextKey("user")

// UserLookup resolves the user named by a valid token.
type UserLookup interface {
	GetUserByID(id string) (models.User, error)
}

// TokenManager issues and validates session tokens.
type TokenManager struct {
	key []byte
	now func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{key: []byte(secret), now: time.Now}
}

// GenerateJWT creates a new JWT for a given user.
func (m *TokenManager) GenerateJWT(user models.User) (string, time.Time, error) {
	expirationTime := m.now().Add(tokenTTL)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(m.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	return signed, expirationTime, err
}

// ValidateJWT parses and validates a JWT string.
func (m *TokenManager) ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// SetCookie stores a fresh token for user in the response.
func (m *TokenManager) SetCookie(w http.ResponseWriter, user models.User, secure bool) error {
	token, expires, err := m.GenerateJWT(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// ClearCookie removes the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// tokenFromRequest reads the Authorization header first, then the cookie.
func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if tok, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return tok
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware attaches the authenticated user, if any, to the request context.
// A missing, invalid or stale token leaves the request anonymous.
func (m *TokenManager) Middleware(users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := m.ValidateJWT(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("Ignoring invalid auth token")
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(claims.UserID)
			if err != nil {
				log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found in DB")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// RequireUser redirects anonymous requests to the login page, remembering
// where they were going.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, LoginRedirect(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRedirect builds the login URL that returns to next afterwards.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
