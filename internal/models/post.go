package models

import "time"

// Post is a single authored text entry.
type Post struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pubDate"`
	AuthorID string    `json:"authorId"`
	GroupID  *int64    `json:"groupId,omitempty"` // Nullable, posts may have no group

	// Joined for display, not stored on the posts row.
	Author User   `json:"author"`
	Group  *Group `json:"group,omitempty"`
}

// InGroup reports whether the post belongs to the group with the given ID.
func (p Post) InGroup(groupID int64) bool {
	return p.GroupID != nil && *p.GroupID == groupID
}
