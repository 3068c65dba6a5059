// Package web renders the site's HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/isdelr/yatube/internal/forms"
	"github.com/isdelr/yatube/internal/models"
	"github.com/isdelr/yatube/internal/pagination"
)

//go:embed templates
var templateFS embed.FS

// Page files rendered inside the base layout.
const (
	PageIndex      = "index.html"
	PageGroupList  = "group_list.html"
	PageProfile    = "profile.html"
	PagePostDetail = "post_detail.html"
	PageCreatePost = "create_post.html"
	PageSignup     = "signup.html"
	PageLogin      = "login.html"
)

// Data is the context passed to every page.
type Data struct {
	Title       string
	Description string
	Path        string
	CurrentUser *models.User

	Posts []models.Post
	Page  pagination.Page

	Post      *models.Post
	Group     *models.Group
	Author    *models.User
	PostCount int

	Groups   []models.Group
	PostForm *forms.PostForm
	IsEdit   bool

	SignupForm *forms.SignupForm
	LoginForm  *forms.LoginForm
}

// IsAuthor reports whether the current user wrote post.
func (d *Data) IsAuthor(post models.Post) bool {
	return d.CurrentUser != nil && d.CurrentUser.ID == post.AuthorID
}

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
	"truncateWords": func(n int, s string) string {
		words := strings.Fields(s)
		if len(words) <= n {
			return s
		}
		return strings.Join(words[:n], " ") + " …"
	},
	"linebreaks": func(s string) template.HTML {
		escaped := template.HTMLEscapeString(s)
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
}

// Renderer holds the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the base layout and partials.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("").Funcs(functions).ParseFS(templateFS,
		"templates/base.layout.html", "templates/*.partial.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.page.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		ts, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if ts, err = ts.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		name := strings.TrimSuffix(path.Base(file), ".page.html") + ".html"
		r.pages[name] = ts
	}
	return r, nil
}

// Render executes page with data and writes it with status. Rendering
// happens into a buffer so a template error never leaves half a page.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data *Data) error {
	ts, ok := rn.pages[page]
	if !ok {
		return fmt.Errorf("template %s does not exist", page)
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
