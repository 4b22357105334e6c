package blogapp

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/TahaY291/blogapp/richtext"
)

const postColumns = `p.id, p.title, p.content, p.cover_image, p.tags, p.author_id, p.views, p.published, p.created_at, p.updated_at`

// summaryColumns selects a post with its author and engagement counts.
// The single placeholder is the viewer id; "" never matches a like row.
const summaryColumns = postColumns + `, u.username, u.image,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id) AS likes_count,
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count,
	EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?) AS is_liked`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner, extra ...any) (Post, error) {
	var p Post
	var tags, created, updated string
	var published int
	dest := append([]any{&p.ID, &p.Title, &p.Content, &p.CoverImage, &tags, &p.AuthorID, &p.Views, &published, &created, &updated}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	p.Tags = ParseTags(tags)
	p.Published = published == 1
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

func scanSummary(row scanner) (PostSummary, error) {
	var sum PostSummary
	var liked int
	p, err := scanPost(row, &sum.Author.Username, &sum.Author.Image, &sum.LikesCount, &sum.CommentsCount, &liked)
	if err != nil {
		return PostSummary{}, err
	}
	sum.Post = p
	sum.Author.ID = p.AuthorID
	sum.IsLiked = liked == 1
	sum.Excerpt = richtext.Excerpt(p.Content, excerptLength)
	sum.ReadingMinutes = richtext.ReadingMinutes(p.Content)
	return sum, nil
}

// postFilter selects which posts a listing covers.
type postFilter struct {
	PublishedOnly bool
	AuthorID      string
	Tag           string
}

func (f postFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.PublishedOnly {
		clauses = append(clauses, "p.published = 1")
	}
	if f.AuthorID != "" {
		clauses = append(clauses, "p.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if tag := normalizeTag(f.Tag); tag != "" {
		clauses = append(clauses, "instr(p.tags, ',' || ? || ',') > 0")
		args = append(args, tag)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// CreatePost inserts p. Tags are normalized to lowercase.
func (s *Store) CreatePost(ctx context.Context, p Post) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO posts (id, title, content, cover_image, tags, author_id, views, published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Content, p.CoverImage, encodeTags(p.Tags), p.AuthorID, p.Views, boolInt(p.Published), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	return err
}

// GetPost returns a post by id regardless of its published flag.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id))
}

// UpdatePost overwrites the editable fields of p. Views and CreatedAt are
// left untouched.
func (s *Store) UpdatePost(ctx context.Context, p Post) error {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET title = ?, content = ?, cover_image = ?, tags = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Content, p.CoverImage, encodeTags(p.Tags), boolInt(p.Published), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeletePost removes a post; its likes and comments cascade.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// IncrementViews adds one to the post's view counter.
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// GetPostSummary returns one post with author and engagement for viewer.
func (s *Store) GetPostSummary(ctx context.Context, id, viewer string) (PostSummary, error) {
	return scanSummary(s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.id = ?`, viewer, id))
}

// ListPostSummaries returns one page of posts matching f, newest first with
// ties broken by id, enriched for viewer.
func (s *Store) ListPostSummaries(ctx context.Context, f postFilter, viewer string, limit, offset int) ([]PostSummary, error) {
	where, args := f.where()
	query := `SELECT ` + summaryColumns + ` FROM posts p JOIN users u ON u.id = p.author_id` + where +
		` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append([]any{viewer}, args...)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []PostSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, sum)
	}
	return posts, rows.Err()
}

// CountPosts counts posts matching f.
func (s *Store) CountPosts(ctx context.Context, f postFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n)
	return n, err
}

// ListPublished returns every published post, newest first, for feeds
// that are not paginated (RSS, sitemap).
func (s *Store) ListPublished(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.published = 1 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// AuthorTotals sums engagement across every post written by authorID.
func (s *Store) AuthorTotals(ctx context.Context, authorID string) (posts, likes, views int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(p.views), 0),
		       COALESCE(SUM((SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)), 0)
		FROM posts p WHERE p.author_id = ?`, authorID).Scan(&posts, &views, &likes)
	return posts, likes, views, err
}
