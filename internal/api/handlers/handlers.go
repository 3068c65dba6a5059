package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/isdelr/yatube/internal/auth"
	"github.com/isdelr/yatube/internal/web"
	"github.com/rs/zerolog/log"
)

// Publisher fans post events out to live feed subscribers.
type Publisher interface {
	Publish(message []byte, topics ...string)
}

// render fills the per-request fields of data and writes the page.
func render(w http.ResponseWriter, r *http.Request, rn *web.Renderer, status int, page string, data *web.Data) {
	if data == nil {
		data = &web.Data{}
	}
	data.Path = r.URL.Path
	if user, ok := auth.UserFromContext(r.Context()); ok && data.CurrentUser == nil {
		data.CurrentUser = &user
	}

	if err := rn.Render(w, status, page, data); err != nil {
		serverError(w, r, err)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func notFound(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// redirect answers with 302 Found, matching what browsers expect after a form post.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusFound)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10) + "/"
}
