package blogapp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, username string) User {
	t.Helper()
	u := User{
		ID:           newID(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         RoleUser,
		CreatedAt:    testEpoch,
		UpdatedAt:    testEpoch,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func seedPost(t *testing.T, s *Store, author User, title string, created time.Time, published bool, tags ...string) Post {
	t.Helper()
	p := Post{
		ID:        newID(),
		Title:     title,
		Content:   "<p>Some content for " + title + "</p>",
		Tags:      tags,
		AuthorID:  author.ID,
		Published: published,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := s.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return p
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	var fk int
	if err := s.db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	u := seedUser(t, s, "alice")

	dup := u
	dup.ID = newID()
	dup.Email = "ALICE@example.com"
	if err := s.CreateUser(context.Background(), dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("CreateUser duplicate = %v, want ErrConflict", err)
	}
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	u := seedUser(t, s, "bob")

	got, err := s.GetUserByEmail(context.Background(), "BOB@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %q, want %q", got.ID, u.ID)
	}
	if !got.CreatedAt.Equal(testEpoch) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testEpoch)
	}

	if _, err := s.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail unknown = %v, want ErrNotFound", err)
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	author := seedUser(t, s, "carol")
	post := seedPost(t, s, author, "Test Post", testEpoch, true, "Go", "testing", "go")

	got, err := s.GetPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Title, post.Title)
	}
	if got.AuthorID != author.ID {
		t.Errorf("AuthorID = %q, want %q", got.AuthorID, author.ID)
	}
	if !reflect.DeepEqual(got.Tags, []string{"go", "testing"}) {
		t.Errorf("Tags = %v, want [go testing]", got.Tags)
	}
	if got.Views != 0 {
		t.Errorf("Views = %d, want 0", got.Views)
	}
	if !got.Published {
		t.Error("Published should be true")
	}
	if !got.CreatedAt.Equal(testEpoch) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testEpoch)
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetPost(context.Background(), newID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost = %v, want ErrNotFound", err)
	}
}

func TestUpdatePostKeepsViewsAndCreatedAt(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "dave")
	post := seedPost(t, s, author, "Original Title", testEpoch, true)

	if err := s.IncrementViews(ctx, post.ID); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}
	post.Title = "Updated Title"
	post.Views = 0
	post.CreatedAt = testEpoch.Add(time.Hour)
	post.UpdatedAt = testEpoch.Add(2 * time.Hour)
	if err := s.UpdatePost(ctx, post); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("Title = %q, want %q", got.Title, "Updated Title")
	}
	if got.Views != 1 {
		t.Errorf("Views = %d, want 1", got.Views)
	}
	if !got.CreatedAt.Equal(testEpoch) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testEpoch)
	}
	if !got.UpdatedAt.Equal(testEpoch.Add(2 * time.Hour)) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
}

func TestListPostSummariesOrderAndCounts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "erin")
	reader := seedUser(t, s, "frank")

	older := seedPost(t, s, author, "Older", testEpoch, true)
	newer := seedPost(t, s, author, "Newer", testEpoch.Add(time.Hour), true)
	seedPost(t, s, author, "Draft", testEpoch.Add(2*time.Hour), false)

	if err := s.InsertLike(ctx, Like{ID: newID(), PostID: older.ID, UserID: reader.ID, CreatedAt: testEpoch}); err != nil {
		t.Fatalf("InsertLike failed: %v", err)
	}
	if err := s.CreateComment(ctx, Comment{ID: newID(), PostID: older.ID, UserID: reader.ID, Comment: "hi", CreatedAt: testEpoch, UpdatedAt: testEpoch}); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	f := postFilter{PublishedOnly: true}
	posts, err := s.ListPostSummaries(ctx, f, reader.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListPostSummaries failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].ID != newer.ID || posts[1].ID != older.ID {
		t.Errorf("order = [%s %s], want newest first", posts[0].Title, posts[1].Title)
	}
	if posts[1].LikesCount != 1 || posts[1].CommentsCount != 1 || !posts[1].IsLiked {
		t.Errorf("older engagement = likes %d comments %d liked %v", posts[1].LikesCount, posts[1].CommentsCount, posts[1].IsLiked)
	}
	if posts[0].IsLiked {
		t.Error("newer post should not be liked")
	}
	if posts[0].Author.Username != "erin" {
		t.Errorf("Author.Username = %q, want erin", posts[0].Author.Username)
	}

	anon, err := s.ListPostSummaries(ctx, f, "", 10, 0)
	if err != nil {
		t.Fatalf("ListPostSummaries anonymous failed: %v", err)
	}
	if anon[1].IsLiked {
		t.Error("anonymous viewer should never see isLiked")
	}

	n, err := s.CountPosts(ctx, postFilter{AuthorID: author.ID})
	if err != nil {
		t.Fatalf("CountPosts failed: %v", err)
	}
	if n != 3 {
		t.Errorf("CountPosts by author = %d, want 3", n)
	}
}

func TestListPostsByTag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "gina")
	seedPost(t, s, author, "Go Post", testEpoch, true, "go", "web")
	seedPost(t, s, author, "Rust Post", testEpoch.Add(time.Minute), true, "rust")
	seedPost(t, s, author, "Gopher", testEpoch.Add(2*time.Minute), true, "gopher")

	posts, err := s.ListPostSummaries(ctx, postFilter{PublishedOnly: true, Tag: " GO "}, "", 10, 0)
	if err != nil {
		t.Fatalf("ListPostSummaries failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Go Post" {
		t.Errorf("tag filter returned %d posts, want only Go Post", len(posts))
	}
}

func TestListTags(t *testing.T) {
	s := setupTestStore(t)
	author := seedUser(t, s, "hank")
	seedPost(t, s, author, "One", testEpoch, true, "web", "go")
	seedPost(t, s, author, "Two", testEpoch, true, "go", "api")
	seedPost(t, s, author, "Hidden", testEpoch, false, "secret")

	tags, err := s.ListTags(context.Background())
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if !reflect.DeepEqual(tags, []string{"api", "go", "web"}) {
		t.Errorf("ListTags = %v, want [api go web]", tags)
	}
}

func TestInsertLikeUniquePair(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "ivy")
	post := seedPost(t, s, author, "Likeable", testEpoch, true)

	first := Like{ID: newID(), PostID: post.ID, UserID: author.ID, CreatedAt: testEpoch}
	if err := s.InsertLike(ctx, first); err != nil {
		t.Fatalf("InsertLike failed: %v", err)
	}
	second := Like{ID: newID(), PostID: post.ID, UserID: author.ID, CreatedAt: testEpoch}
	if err := s.InsertLike(ctx, second); !errors.Is(err, ErrConflict) {
		t.Fatalf("second InsertLike = %v, want ErrConflict", err)
	}
	n, err := s.CountLikes(ctx, post.ID)
	if err != nil {
		t.Fatalf("CountLikes failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountLikes = %d, want 1", n)
	}
}

func TestDeletePostCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "jack")
	post := seedPost(t, s, author, "Doomed", testEpoch, true)
	if err := s.InsertLike(ctx, Like{ID: newID(), PostID: post.ID, UserID: author.ID, CreatedAt: testEpoch}); err != nil {
		t.Fatalf("InsertLike failed: %v", err)
	}
	if err := s.CreateComment(ctx, Comment{ID: newID(), PostID: post.ID, UserID: author.ID, Comment: "bye", CreatedAt: testEpoch, UpdatedAt: testEpoch}); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if n, _ := s.CountLikes(ctx, post.ID); n != 0 {
		t.Errorf("likes after delete = %d, want 0", n)
	}
	comments, err := s.ListComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments after delete = %d, want 0", len(comments))
	}
	if err := s.DeletePost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePost = %v, want ErrNotFound", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "kate")
	seedPost(t, s, author, "Mine", testEpoch, true)

	if err := s.DeleteUser(ctx, author.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	n, err := s.CountPosts(ctx, postFilter{AuthorID: author.ID})
	if err != nil {
		t.Fatalf("CountPosts failed: %v", err)
	}
	if n != 0 {
		t.Errorf("posts after user delete = %d, want 0", n)
	}
}

func TestListCommentsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "liam")
	post := seedPost(t, s, author, "Chatty", testEpoch, true)
	for i := 0; i < 3; i++ {
		at := testEpoch.Add(time.Duration(i) * time.Minute)
		c := Comment{ID: newID(), PostID: post.ID, UserID: author.ID, Comment: fmt.Sprintf("c%d", i), CreatedAt: at, UpdatedAt: at}
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatalf("CreateComment failed: %v", err)
		}
	}

	comments, err := s.ListComments(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}
	if comments[0].Comment.Comment != "c2" || comments[2].Comment.Comment != "c0" {
		t.Errorf("order = [%s .. %s], want newest first", comments[0].Comment.Comment, comments[2].Comment.Comment)
	}
	if comments[0].User.Username != "liam" || comments[0].User.ID != author.ID {
		t.Errorf("comment user = %+v", comments[0].User)
	}
}

func TestAuthorTotals(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	author := seedUser(t, s, "mia")
	reader := seedUser(t, s, "noah")
	a := seedPost(t, s, author, "A", testEpoch, true)
	seedPost(t, s, author, "B", testEpoch, false)
	for i := 0; i < 3; i++ {
		if err := s.IncrementViews(ctx, a.ID); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}
	for _, u := range []User{author, reader} {
		if err := s.InsertLike(ctx, Like{ID: newID(), PostID: a.ID, UserID: u.ID, CreatedAt: testEpoch}); err != nil {
			t.Fatalf("InsertLike failed: %v", err)
		}
	}

	posts, likes, views, err := s.AuthorTotals(ctx, author.ID)
	if err != nil {
		t.Fatalf("AuthorTotals failed: %v", err)
	}
	if posts != 2 || likes != 2 || views != 3 {
		t.Errorf("AuthorTotals = (%d, %d, %d), want (2, 2, 3)", posts, likes, views)
	}

	posts, likes, views, err = s.AuthorTotals(ctx, reader.ID)
	if err != nil {
		t.Fatalf("AuthorTotals empty failed: %v", err)
	}
	if posts != 0 || likes != 0 || views != 0 {
		t.Errorf("AuthorTotals empty = (%d, %d, %d), want zeros", posts, likes, views)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{",go,web,", []string{"go", "web"}},
		{",", []string{}},
		{"", []string{}},
		{",single,", []string{"single"}},
	}
	for _, tt := range tests {
		got := ParseTags(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSplitTagList(t *testing.T) {
	got := SplitTagList(" Go, web ,,GO, Rust ")
	want := []string{"go", "web", "rust"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitTagList = %v, want %v", got, want)
	}
}
