package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/yatube/internal/models"
	"github.com/isdelr/yatube/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[string]models.User

func (s stubUsers) GetUserByID(id string) (models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return models.User{}, services.ErrUserNotFound
}

var leo = models.User{ID: "u-1", Username: "leo"}

func TestGenerateAndValidateJWT(t *testing.T) {
	m := NewTokenManager("secret")

	token, expires, err := m.GenerateJWT(leo)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), expires, time.Minute)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "leo", claims.Username)

	_, err = NewTokenManager("other").ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret")
	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, _, err := m.GenerateJWT(leo)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateJWT(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m := NewTokenManager("secret")
	users := stubUsers{leo.ID: leo}

	var seen *models.User
	h := m.Middleware(users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = nil
		if u, ok := UserFromContext(r.Context()); ok {
			seen = &u
		}
	}))

	token, _, err := m.GenerateJWT(leo)
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
		assert.Equal(t, "leo", seen.Username)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		h.ServeHTTP(httptest.NewRecorder(), req)
		require.NotNil(t, seen)
	})

	t.Run("anonymous", func(t *testing.T) {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, seen)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, seen)
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost, _, err := m.GenerateJWT(models.User{ID: "gone", Username: "gone"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: ghost})
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Nil(t, seen)
	})
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req = req.WithContext(WithUser(req.Context(), leo))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/create/", SafeNext("/create/", "/"))
	assert.Equal(t, "/", SafeNext("", "/"))
	assert.Equal(t, "/", SafeNext("https://evil.test/", "/"))
	assert.Equal(t, "/", SafeNext("//evil.test/", "/"))
	assert.Equal(t, "/", SafeNext(`/\evil.test`, "/"))
}

func TestSetAndClearCookie(t *testing.T) {
	m := NewTokenManager("secret")
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetCookie(rec, leo, true))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec = httptest.NewRecorder()
	ClearCookie(rec)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
