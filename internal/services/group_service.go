package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/isdelr/yatube/internal/models"
)

var slugRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// GroupServiceProvider defines the interface for group services.
type GroupServiceProvider interface {
	GetAllGroups() ([]models.Group, error)
	GetGroupByID(id int64) (models.Group, error)
	GetGroupBySlug(slug string) (models.Group, error)
	CreateGroup(title, slug, description string) (models.Group, error)
}

// GroupService provides access to groups.
type GroupService struct {
	db *sql.DB
}

// NewGroupService creates a new GroupService.
func NewGroupService(db *sql.DB) *GroupService {
	return &GroupService{db: db}
}

const groupColumns = "id, title, slug, description"

func scanGroup(scanner interface{ Scan(...interface{}) error }) (models.Group, error) {
	var g models.Group
	var desc sql.NullString
	if err := scanner.Scan(&g.ID, &g.Title, &g.Slug, &desc); err != nil {
		return models.Group{}, err
	}
	g.Description = desc.String
	return g, nil
}

// GetAllGroups lists groups ordered by title.
func (s *GroupService) GetAllGroups() ([]models.Group, error) {
	rows, err := s.db.Query("SELECT " + groupColumns + " FROM groups ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroupByID retrieves a group by its ID.
func (s *GroupService) GetGroupByID(id int64) (models.Group, error) {
	g, err := scanGroup(s.db.QueryRow("SELECT "+groupColumns+" FROM groups WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, fmt.Errorf("group with ID %d: %w", id, ErrGroupNotFound)
	}
	return g, err
}

// GetGroupBySlug retrieves a group by its slug.
func (s *GroupService) GetGroupBySlug(slug string) (models.Group, error) {
	g, err := scanGroup(s.db.QueryRow("SELECT "+groupColumns+" FROM groups WHERE slug = ?", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, fmt.Errorf("group %q: %w", slug, ErrGroupNotFound)
	}
	return g, err
}

// CreateGroup adds a new group.
func (s *GroupService) CreateGroup(title, slug, description string) (models.Group, error) {
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(slug)
	if title == "" {
		return models.Group{}, ErrEmptyGroupTitle
	}
	if !slugRe.MatchString(slug) {
		return models.Group{}, ErrInvalidSlug
	}

	res, err := s.db.Exec("INSERT INTO groups (title, slug, description) VALUES (?, ?, ?)",
		title, slug, nullString(strings.TrimSpace(description)))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Group{}, ErrSlugTaken
		}
		return models.Group{}, fmt.Errorf("failed to create group: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Group{}, err
	}
	return s.GetGroupByID(id)
}
