package forms

import (
	"net/url"
	"strconv"

	"github.com/isdelr/yatube/internal/models"
)

// PostForm holds the editable fields of a post.
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group"`

	Errors Errors `form:"-" validate:"-"`
}

// NewPostForm binds a submitted form. Text is trimmed.
func NewPostForm(values url.Values) *PostForm {
	return &PostForm{
		Text:   value(values, "text"),
		Group:  value(values, "group"),
		Errors: Errors{},
	}
}

// PostFormFrom pre-fills the form with an existing post.
func PostFormFrom(post models.Post) *PostForm {
	f := &PostForm{Text: post.Text, Errors: Errors{}}
	if post.GroupID != nil {
		f.Group = strconv.FormatInt(*post.GroupID, 10)
	}
	return f
}

// Validate checks the form and reports whether it is valid. Whether the
// selected group exists is up to the caller, see InvalidGroup.
func (f *PostForm) Validate() bool {
	for field, msg := range check(f) {
		f.Errors.Add(field, msg)
	}
	if f.Group != "" {
		if _, err := strconv.ParseInt(f.Group, 10, 64); err != nil {
			f.InvalidGroup()
		}
	}
	return f.Errors.Valid()
}

// InvalidGroup marks the selected group as not a valid choice.
func (f *PostForm) InvalidGroup() {
	f.Errors.Add("group", msgInvalidChoice)
}

// GroupID returns the selected group, nil when none was chosen.
// Call only after Validate.
func (f *PostForm) GroupID() *int64 {
	if f.Group == "" {
		return nil
	}
	id, err := strconv.ParseInt(f.Group, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// Selected reports whether the group option with id is chosen, for templates.
func (f *PostForm) Selected(id int64) bool {
	return f.Group == strconv.FormatInt(id, 10)
}
