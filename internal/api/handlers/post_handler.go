package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/yatube/internal/auth"
	"github.com/isdelr/yatube/internal/forms"
	"github.com/isdelr/yatube/internal/metrics"
	"github.com/isdelr/yatube/internal/models"
	"github.com/isdelr/yatube/internal/services"
	"github.com/isdelr/yatube/internal/web"
	ws "github.com/isdelr/yatube/internal/websocket"
	"github.com/rs/zerolog/log"
)

// PostHandler serves the feeds and the post create/edit forms.
type PostHandler struct {
	posts  services.PostServiceProvider
	groups services.GroupServiceProvider
	users  services.UserServiceProvider
	render *web.Renderer
	events Publisher
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts services.PostServiceProvider, groups services.GroupServiceProvider, users services.UserServiceProvider, rn *web.Renderer, events Publisher) *PostHandler {
	return &PostHandler{posts: posts, groups: groups, users: users, render: rn, events: events}
}

// Index shows the global feed.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, page, err := h.posts.GetPosts(r.URL.Query().Get("page"))
	if err != nil {
		serverError(w, r, err)
		return
	}

	render(w, r, h.render, http.StatusOK, web.PageIndex, &web.Data{
		Title: "Latest updates",
		Posts: posts,
		Page:  page,
	})
}

// GroupPosts shows the feed of a single group.
func (h *PostHandler) GroupPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	group, err := h.groups.GetGroupBySlug(slug)
	if err != nil {
		if errors.Is(err, services.ErrGroupNotFound) {
			notFound(w)
			return
		}
		serverError(w, r, err)
		return
	}

	posts, page, err := h.posts.GetGroupPosts(group.ID, r.URL.Query().Get("page"))
	if err != nil {
		serverError(w, r, err)
		return
	}

	render(w, r, h.render, http.StatusOK, web.PageGroupList, &web.Data{
		Title:       "Posts of group " + group.Title,
		Description: group.Description,
		Group:       &group,
		Posts:       posts,
		Page:        page,
	})
}

// Profile shows every post written by one user.
func (h *PostHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	author, err := h.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			notFound(w)
			return
		}
		serverError(w, r, err)
		return
	}

	posts, page, err := h.posts.GetAuthorPosts(author.ID, r.URL.Query().Get("page"))
	if err != nil {
		serverError(w, r, err)
		return
	}

	render(w, r, h.render, http.StatusOK, web.PageProfile, &web.Data{
		Title:     "Profile of " + author.Username,
		Author:    &author,
		PostCount: page.Total,
		Posts:     posts,
		Page:      page,
	})
}

// Detail shows a single post.
func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	count, err := h.posts.CountAuthorPosts(post.AuthorID)
	if err != nil {
		serverError(w, r, err)
		return
	}

	render(w, r, h.render, http.StatusOK, web.PagePostDetail, &web.Data{
		Title:     "Post " + truncate(post.Text, 30),
		Post:      &post,
		PostCount: count,
	})
}

// Create shows and processes the new post form. The route is wrapped in
// auth.RequireUser.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if r.Method != http.MethodPost {
		h.renderForm(w, r, http.StatusOK, forms.NewPostForm(nil), nil)
		return
	}

	form, ok := h.bindPostForm(w, r)
	if !ok {
		return
	}
	if !form.Errors.Valid() {
		h.renderForm(w, r, http.StatusOK, form, nil)
		return
	}

	post, err := h.posts.CreatePost(user.ID, form.Text, form.GroupID())
	if err != nil {
		serverError(w, r, err)
		return
	}

	log.Info().Int64("post_id", post.ID).Str("author", user.Username).Msg("Post created")
	metrics.PostCreated()
	h.publish(ws.ActionPostCreated, post)
	redirect(w, r, profileURL(user.Username))
}

// Edit shows and processes the edit form. Only the author may edit; anyone
// else is sent back to the post.
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if post.AuthorID != user.ID {
		log.Warn().Int64("post_id", post.ID).Str("user", user.Username).Msg("Edit attempt by non-author")
		redirect(w, r, postURL(post.ID))
		return
	}

	if r.Method != http.MethodPost {
		h.renderForm(w, r, http.StatusOK, forms.PostFormFrom(post), &post)
		return
	}

	form, ok := h.bindPostForm(w, r)
	if !ok {
		return
	}
	if !form.Errors.Valid() {
		h.renderForm(w, r, http.StatusOK, form, &post)
		return
	}

	updated, err := h.posts.UpdatePost(post.ID, form.Text, form.GroupID())
	if err != nil {
		serverError(w, r, err)
		return
	}

	log.Info().Int64("post_id", updated.ID).Str("author", user.Username).Msg("Post updated")
	metrics.PostUpdated()
	h.publish(ws.ActionPostUpdated, updated)
	redirect(w, r, postURL(updated.ID))
}

// loadPost resolves the {id} URL parameter, answering 404 itself.
func (h *PostHandler) loadPost(w http.ResponseWriter, r *http.Request) (models.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		notFound(w)
		return models.Post{}, false
	}

	post, err := h.posts.GetPostByID(id)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			notFound(w)
		} else {
			serverError(w, r, err)
		}
		return models.Post{}, false
	}
	return post, true
}

// bindPostForm parses and validates the submitted form, including whether
// the chosen group exists.
func (h *PostHandler) bindPostForm(w http.ResponseWriter, r *http.Request) (*forms.PostForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return nil, false
	}

	form := forms.NewPostForm(r.PostForm)
	form.Validate()
	if gid := form.GroupID(); gid != nil {
		if _, err := h.groups.GetGroupByID(*gid); err != nil {
			if !errors.Is(err, services.ErrGroupNotFound) {
				serverError(w, r, err)
				return nil, false
			}
			form.InvalidGroup()
		}
	}
	return form, true
}

func (h *PostHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, form *forms.PostForm, post *models.Post) {
	groups, err := h.groups.GetAllGroups()
	if err != nil {
		serverError(w, r, err)
		return
	}

	data := &web.Data{
		Title:    "New post",
		Groups:   groups,
		PostForm: form,
	}
	if post != nil {
		data.Title = "Edit post"
		data.Post = post
		data.IsEdit = true
	}
	render(w, r, h.render, status, web.PageCreatePost, data)
}

func (h *PostHandler) publish(action string, post models.Post) {
	if h.events == nil {
		return
	}
	topics := []string{ws.GlobalTopic, ws.ProfileTopic(post.Author.Username)}
	if post.Group != nil {
		topics = append(topics, ws.GroupTopic(post.Group.Slug))
	}
	h.events.Publish(ws.Encode(action, post), topics...)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
