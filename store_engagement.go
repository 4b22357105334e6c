package blogapp

import (
	"context"
	"database/sql"
	"errors"
)

// FindLike returns the like row for (userID, postID) or ErrNotFound.
func (s *Store) FindLike(ctx context.Context, userID, postID string) (Like, error) {
	var l Like
	var created string
	err := s.db.QueryRowContext(ctx, `SELECT id, post_id, user_id, created_at FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID).
		Scan(&l.ID, &l.PostID, &l.UserID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Like{}, ErrNotFound
	}
	if err != nil {
		return Like{}, err
	}
	l.CreatedAt = parseTime(created)
	return l, nil
}

// InsertLike stores l. A second like for the same pair yields ErrConflict.
func (s *Store) InsertLike(ctx context.Context, l Like) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO likes (id, post_id, user_id, created_at) VALUES (?, ?, ?, ?)`,
		l.ID, l.PostID, l.UserID, formatTime(l.CreatedAt))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// DeleteLike removes a like row by id.
func (s *Store) DeleteLike(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM likes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// CountLikes returns how many likes postID has.
func (s *Store) CountLikes(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}

func scanComment(row scanner) (Comment, error) {
	var c Comment
	var created, updated string
	if err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.Comment, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Comment{}, ErrNotFound
		}
		return Comment{}, err
	}
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return c, nil
}

// CreateComment inserts c.
func (s *Store) CreateComment(ctx context.Context, c Comment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO comments (id, post_id, user_id, comment, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.UserID, c.Comment, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	return err
}

// GetComment returns a comment by id or ErrNotFound.
func (s *Store) GetComment(ctx context.Context, id string) (Comment, error) {
	return scanComment(s.db.QueryRowContext(ctx, `SELECT id, post_id, user_id, comment, created_at, updated_at FROM comments WHERE id = ?`, id))
}

// UpdateComment changes only the comment text and updated_at.
func (s *Store) UpdateComment(ctx context.Context, c Comment) error {
	res, err := s.db.ExecContext(ctx, `UPDATE comments SET comment = ?, updated_at = ? WHERE id = ?`,
		c.Comment, formatTime(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ListComments returns the comments on postID with their authors, newest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]CommentView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, c.comment, c.created_at, c.updated_at, u.username, u.image
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []CommentView{}
	for rows.Next() {
		var cv CommentView
		var created, updated string
		if err := rows.Scan(&cv.ID, &cv.PostID, &cv.UserID, &cv.Comment.Comment, &created, &updated, &cv.User.Username, &cv.User.Image); err != nil {
			return nil, err
		}
		cv.CreatedAt = parseTime(created)
		cv.UpdatedAt = parseTime(updated)
		cv.User.ID = cv.UserID
		comments = append(comments, cv)
	}
	return comments, rows.Err()
}
