package blogapp

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

const maxCommentLength = 500

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// CommentInput is the body of a create or edit comment request.
type CommentInput struct {
	Comment string `json:"comment" form:"comment"`
}

// visiblePost loads a post that viewer may see. Drafts are visible to
// their author only; everyone else gets ErrNotFound.
func (s *Service) visiblePost(ctx context.Context, viewer *Principal, id string) (Post, error) {
	if !validID(id) {
		return Post{}, ErrNotFound
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return Post{}, upstream("get post", err)
	}
	if !post.Published && viewerID(viewer) != post.AuthorID {
		return Post{}, ErrNotFound
	}
	return post, nil
}

// ToggleLike flips p's like on a post and returns the new state. A
// concurrent duplicate insert is reported as liked, since the unique pair
// already holds.
func (s *Service) ToggleLike(ctx context.Context, p *Principal, postID string) (LikeState, error) {
	if err := Authorize(p, CapLike, ""); err != nil {
		return LikeState{}, err
	}
	if _, err := s.principalUser(ctx, p); err != nil {
		return LikeState{}, err
	}
	if _, err := s.visiblePost(ctx, p, postID); err != nil {
		return LikeState{}, err
	}

	var liked bool
	existing, err := s.store.FindLike(ctx, p.ID, postID)
	switch {
	case err == nil:
		if err := s.store.DeleteLike(ctx, existing.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return LikeState{}, upstream("delete like", err)
		}
	case errors.Is(err, ErrNotFound):
		err = s.store.InsertLike(ctx, Like{ID: newID(), PostID: postID, UserID: p.ID, CreatedAt: s.now()})
		if err != nil && !errors.Is(err, ErrConflict) {
			return LikeState{}, upstream("insert like", err)
		}
		liked = true
	default:
		return LikeState{}, upstream("find like", err)
	}

	count, err := s.store.CountLikes(ctx, postID)
	if err != nil {
		return LikeState{}, upstream("count likes", err)
	}
	return LikeState{Liked: liked, LikesCount: count}, nil
}

// cleanComment trims text and checks its length in characters.
func cleanComment(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid("comment", "is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return "", invalid("comment", "must be at most 500 characters long")
	}
	return text, nil
}

// CreateComment adds a comment by p on a post.
func (s *Service) CreateComment(ctx context.Context, p *Principal, postID string, in CommentInput) (CommentView, error) {
	if err := Authorize(p, CapCreateComment, ""); err != nil {
		return CommentView{}, err
	}
	text, err := cleanComment(in.Comment)
	if err != nil {
		return CommentView{}, err
	}
	author, err := s.principalUser(ctx, p)
	if err != nil {
		return CommentView{}, err
	}
	if _, err := s.visiblePost(ctx, p, postID); err != nil {
		return CommentView{}, err
	}

	now := s.now()
	c := Comment{ID: newID(), PostID: postID, UserID: p.ID, Comment: text, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return CommentView{}, upstream("create comment", err)
	}
	return CommentView{Comment: c, User: Author{ID: author.ID, Username: author.Username, Image: author.Image}}, nil
}

// ownedComment loads a comment and checks that p may exercise c on it.
func (s *Service) ownedComment(ctx context.Context, p *Principal, c Capability, id string) (Comment, error) {
	if p == nil {
		return Comment{}, ErrUnauthenticated
	}
	if !validID(id) {
		return Comment{}, ErrNotFound
	}
	cm, err := s.store.GetComment(ctx, id)
	if err != nil {
		return Comment{}, upstream("get comment", err)
	}
	if err := Authorize(p, c, cm.UserID); err != nil {
		return Comment{}, err
	}
	return cm, nil
}

// UpdateComment replaces the text of a comment. Only its author may do so;
// post, author and createdAt never change.
func (s *Service) UpdateComment(ctx context.Context, p *Principal, id string, in CommentInput) (Comment, error) {
	cm, err := s.ownedComment(ctx, p, CapEditComment, id)
	if err != nil {
		return Comment{}, err
	}
	text, err := cleanComment(in.Comment)
	if err != nil {
		return Comment{}, err
	}
	cm.Comment = text
	cm.UpdatedAt = s.now()
	if err := s.store.UpdateComment(ctx, cm); err != nil {
		return Comment{}, upstream("update comment", err)
	}
	return cm, nil
}

// DeleteComment removes a comment. Its author and admins may do so.
func (s *Service) DeleteComment(ctx context.Context, p *Principal, id string) error {
	if _, err := s.ownedComment(ctx, p, CapDeleteComment, id); err != nil {
		return err
	}
	return upstream("delete comment", s.store.DeleteComment(ctx, id))
}
