package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/yatube/internal/models"
	"github.com/isdelr/yatube/internal/pagination"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	GetPosts(page string) ([]models.Post, pagination.Page, error)
	GetGroupPosts(groupID int64, page string) ([]models.Post, pagination.Page, error)
	GetAuthorPosts(authorID string, page string) ([]models.Post, pagination.Page, error)
	GetPostByID(id int64) (models.Post, error)
	CountPosts() (int, error)
	CountAuthorPosts(authorID string) (int, error)
	CreatePost(authorID, text string, groupID *int64) (models.Post, error)
	UpdatePost(id int64, text string, groupID *int64) (models.Post, error)
}

// PostService provides business logic for posts.
type PostService struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{db: db, now: time.Now}
}

// Every listing and lookup joins the author and the optional group.
const postSelect = `
	SELECT p.id, p.text, p.pub_date, p.author_id, p.group_id,
	       u.username,
	       g.id, g.title, g.slug, g.description
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

const postOrder = " ORDER BY p.pub_date DESC, p.id DESC"

func scanPost(scanner interface{ Scan(...interface{}) error }) (models.Post, error) {
	var post models.Post
	var groupID, gID sql.NullInt64
	var gTitle, gSlug, gDesc sql.NullString

	err := scanner.Scan(
		&post.ID, &post.Text, &post.PubDate, &post.AuthorID, &groupID,
		&post.Author.Username,
		&gID, &gTitle, &gSlug, &gDesc,
	)
	if err != nil {
		return models.Post{}, err
	}

	post.Author.ID = post.AuthorID
	if groupID.Valid {
		id := groupID.Int64
		post.GroupID = &id
	}
	if gID.Valid {
		post.Group = &models.Group{
			ID:          gID.Int64,
			Title:       gTitle.String,
			Slug:        gSlug.String,
			Description: gDesc.String,
		}
	}
	return post, nil
}

// page counts the rows matching where, resolves the requested page and loads it.
func (s *PostService) page(where string, raw string, args ...interface{}) ([]models.Post, pagination.Page, error) {
	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM posts p"+where, args...).Scan(&total); err != nil {
		return nil, pagination.Page{}, fmt.Errorf("failed to count posts: %w", err)
	}

	p := pagination.Window(total, raw)
	rows, err := s.db.Query(postSelect+where+postOrder+" LIMIT ? OFFSET ?", append(args, p.Limit(), p.Offset())...)
	if err != nil {
		return nil, pagination.Page{}, err
	}
	defer rows.Close()

	posts := make([]models.Post, 0, p.Limit())
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, pagination.Page{}, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Page{}, err
	}
	return posts, p, nil
}

// GetPosts returns one page of the global feed, newest first.
func (s *PostService) GetPosts(page string) ([]models.Post, pagination.Page, error) {
	return s.page("", page)
}

// GetGroupPosts returns one page of the posts published to a group.
func (s *PostService) GetGroupPosts(groupID int64, page string) ([]models.Post, pagination.Page, error) {
	return s.page(" WHERE p.group_id = ?", page, groupID)
}

// GetAuthorPosts returns one page of the posts written by a user.
func (s *PostService) GetAuthorPosts(authorID string, page string) ([]models.Post, pagination.Page, error) {
	return s.page(" WHERE p.author_id = ?", page, authorID)
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id int64) (models.Post, error) {
	post, err := scanPost(s.db.QueryRow(postSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, fmt.Errorf("post with ID %d: %w", id, ErrPostNotFound)
	}
	return post, err
}

// CountPosts returns the total number of posts.
func (s *PostService) CountPosts() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}

// CountAuthorPosts returns the number of posts written by a user.
func (s *PostService) CountAuthorPosts(authorID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM posts WHERE author_id = ?", authorID).Scan(&n)
	return n, err
}

// CreatePost publishes a new post by authorID.
func (s *PostService) CreatePost(authorID, text string, groupID *int64) (models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Post{}, ErrEmptyPostText
	}

	stmt, err := s.db.Prepare("INSERT INTO posts (text, pub_date, author_id, group_id) VALUES (?, ?, ?, ?)")
	if err != nil {
		return models.Post{}, err
	}
	defer stmt.Close()

	res, err := stmt.Exec(text, s.now().UTC(), authorID, groupID)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Post{}, err
	}
	return s.GetPostByID(id)
}

// UpdatePost replaces the text and group of a post. The author and
// publication date never change.
func (s *PostService) UpdatePost(id int64, text string, groupID *int64) (models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Post{}, ErrEmptyPostText
	}

	res, err := s.db.Exec("UPDATE posts SET text = ?, group_id = ? WHERE id = ?", text, groupID, id)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to update post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Post{}, err
	}
	if n == 0 {
		return models.Post{}, fmt.Errorf("post with ID %d: %w", id, ErrPostNotFound)
	}
	return s.GetPostByID(id)
}
