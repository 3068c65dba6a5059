package services

import (
	"errors"
	"strings"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("a user with that username already exists")
	ErrSlugTaken       = errors.New("a group with that slug already exists")
	ErrInvalidSlug     = errors.New("slug may contain only lowercase letters, digits, hyphens and underscores")
	ErrInvalidLogin    = errors.New("invalid username or password")
	ErrEmptyPostText   = errors.New("post text must not be empty")
	ErrEmptyGroupTitle = errors.New("group title must not be empty")
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
