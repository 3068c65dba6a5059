package services

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/isdelr/yatube/internal/database"
	"github.com/isdelr/yatube/internal/models"
	"github.com/isdelr/yatube/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "yatube.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// tickingClock returns strictly increasing times so feed order is deterministic.
func tickingClock() func() time.Time {
	base := time.Date(2023, 2, 13, 2, 27, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

type fixture struct {
	users  *UserService
	groups *GroupService
	posts  *PostService
	author models.User
	other  models.User
	group  models.Group
	group2 models.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		users:  NewUserService(db),
		groups: NewGroupService(db),
		posts:  NewPostService(db),
	}
	f.posts.now = tickingClock()

	var err error
	f.author, err = f.users.CreateUser("AuthorName", "", "password123")
	require.NoError(t, err)
	f.other, err = f.users.CreateUser("AddName", "add@example.com", "password123")
	require.NoError(t, err)
	f.group, err = f.groups.CreateGroup("Test group", "test-slug", "Test description")
	require.NoError(t, err)
	f.group2, err = f.groups.CreateGroup("Another group", "add-test-slug", "")
	require.NoError(t, err)
	return f
}

func TestUserService(t *testing.T) {
	f := newFixture(t)

	got, err := f.users.GetUserByUsername("AuthorName")
	require.NoError(t, err)
	assert.Equal(t, f.author.ID, got.ID)
	assert.Empty(t, got.PasswordHash)
	assert.Equal(t, "add@example.com", f.other.Email)

	_, err = f.users.CreateUser("AuthorName", "", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = f.users.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.users.GetUserByID("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	logged, err := f.users.AuthenticateUser("AuthorName", "password123")
	require.NoError(t, err)
	assert.Equal(t, f.author.ID, logged.ID)

	_, err = f.users.AuthenticateUser("AuthorName", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, err = f.users.AuthenticateUser("nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestGroupService(t *testing.T) {
	f := newFixture(t)

	g, err := f.groups.GetGroupBySlug("test-slug")
	require.NoError(t, err)
	assert.Equal(t, f.group, g)
	assert.Equal(t, "Test description", g.Description)

	_, err = f.groups.GetGroupBySlug("missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
	_, err = f.groups.GetGroupByID(999)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	all, err := f.groups.GetAllGroups()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Another group", all[0].Title)

	_, err = f.groups.CreateGroup("Dup", "test-slug", "")
	assert.ErrorIs(t, err, ErrSlugTaken)
	_, err = f.groups.CreateGroup("Bad", "Bad Slug", "")
	assert.ErrorIs(t, err, ErrInvalidSlug)
	_, err = f.groups.CreateGroup("  ", "blank", "")
	assert.ErrorIs(t, err, ErrEmptyGroupTitle)
}

func TestCreateAndGetPost(t *testing.T) {
	f := newFixture(t)

	post, err := f.posts.CreatePost(f.author.ID, "  Test post  ", &f.group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test post", post.Text)
	assert.Equal(t, f.author.ID, post.AuthorID)
	assert.Equal(t, "AuthorName", post.Author.Username)
	require.NotNil(t, post.Group)
	assert.Equal(t, "test-slug", post.Group.Slug)
	assert.True(t, post.InGroup(f.group.ID))
	assert.False(t, post.PubDate.IsZero())

	plain, err := f.posts.CreatePost(f.author.ID, "no group", nil)
	require.NoError(t, err)
	assert.Nil(t, plain.GroupID)
	assert.Nil(t, plain.Group)

	_, err = f.posts.CreatePost(f.author.ID, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyPostText)

	_, err = f.posts.GetPostByID(12345)
	assert.ErrorIs(t, err, ErrPostNotFound)

	n, err := f.posts.CountPosts()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUpdatePostKeepsAuthor(t *testing.T) {
	f := newFixture(t)

	post, err := f.posts.CreatePost(f.author.ID, "original", &f.group.ID)
	require.NoError(t, err)

	updated, err := f.posts.UpdatePost(post.ID, "edited", &f.group2.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	assert.Equal(t, f.group2.ID, *updated.GroupID)
	assert.Equal(t, f.author.ID, updated.AuthorID)
	assert.True(t, post.PubDate.Equal(updated.PubDate))

	cleared, err := f.posts.UpdatePost(post.ID, "edited", nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.GroupID)

	n, err := f.posts.CountPosts()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.posts.UpdatePost(9999, "x", nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = f.posts.UpdatePost(post.ID, "", nil)
	assert.ErrorIs(t, err, ErrEmptyPostText)
}

func TestFeedsArePaginatedNewestFirst(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < pagination.PerPage+3; i++ {
		_, err := f.posts.CreatePost(f.author.ID, fmt.Sprintf("Post #%d", i), &f.group.ID)
		require.NoError(t, err)
	}
	_, err := f.posts.CreatePost(f.other.ID, "elsewhere", &f.group2.ID)
	require.NoError(t, err)

	posts, page, err := f.posts.GetPosts("")
	require.NoError(t, err)
	assert.Len(t, posts, pagination.PerPage)
	assert.Equal(t, 14, page.Total)
	assert.Equal(t, "elsewhere", posts[0].Text)
	assert.Equal(t, "Post #12", posts[1].Text)

	posts, page, err = f.posts.GetPosts("2")
	require.NoError(t, err)
	assert.Len(t, posts, 4)
	assert.False(t, page.HasNext())

	groupPosts, page, err := f.posts.GetGroupPosts(f.group.ID, "2")
	require.NoError(t, err)
	assert.Len(t, groupPosts, 3)
	assert.Equal(t, 13, page.Total)
	for _, p := range groupPosts {
		assert.True(t, p.InGroup(f.group.ID))
	}

	other, _, err := f.posts.GetGroupPosts(f.group2.ID, "")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "elsewhere", other[0].Text)

	mine, page, err := f.posts.GetAuthorPosts(f.other.ID, "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, 1, page.NumPages)

	count, err := f.posts.CountAuthorPosts(f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, count)
}

func TestGetPostsCountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts p`).WillReturnError(assert.AnError)

	_, _, err = NewPostService(db).GetPosts("1")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
