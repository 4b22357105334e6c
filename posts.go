package blogapp

import (
	"context"
	"strings"

	"github.com/TahaY291/blogapp/richtext"
)

// PostInput is the body of a create-post request.
type PostInput struct {
	Title     string  `json:"title" form:"title" validate:"required,min=3,max=200"`
	Content   string  `json:"content" form:"content" validate:"required,min=20"`
	Tags      TagList `json:"tags" form:"tags"`
	Published *bool   `json:"published" form:"published"`
}

// PostUpdate carries the fields of an edit; nil fields stay unchanged.
type PostUpdate struct {
	Title     *string  `json:"title" form:"title" validate:"omitempty,min=3,max=200"`
	Content   *string  `json:"content" form:"content" validate:"omitempty,min=10"`
	Tags      *TagList `json:"tags" form:"tags"`
	Published *bool    `json:"published" form:"published"`
}

// Feed returns one page of published posts, newest first. Anonymous
// viewers see isLiked=false everywhere.
func (s *Service) Feed(ctx context.Context, viewer *Principal, q PageQuery) (Page, error) {
	q, err := s.normalizePage(q)
	if err != nil {
		return Page{}, err
	}
	return s.listPage(ctx, postFilter{PublishedOnly: true, Tag: q.Tag}, viewer, q)
}

// PostDetail returns a post with author, counts, viewer like state and its
// comments, newest first. Each successful call adds one view. Drafts are
// visible to their author only.
func (s *Service) PostDetail(ctx context.Context, viewer *Principal, id string) (PostDetail, error) {
	if _, err := s.visiblePost(ctx, viewer, id); err != nil {
		return PostDetail{}, err
	}
	if err := s.store.IncrementViews(ctx, id); err != nil {
		return PostDetail{}, upstream("increment views", err)
	}
	sum, err := s.store.GetPostSummary(ctx, id, viewerID(viewer))
	if err != nil {
		return PostDetail{}, upstream("get post", err)
	}
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return PostDetail{}, upstream("list comments", err)
	}
	return PostDetail{PostSummary: sum, Comments: comments}, nil
}

// CreatePost stores a new post authored by p. cover is optional.
func (s *Service) CreatePost(ctx context.Context, p *Principal, in PostInput, cover *ImageUpload) (PostSummary, error) {
	if err := Authorize(p, CapCreatePost, ""); err != nil {
		return PostSummary{}, err
	}
	if _, err := s.principalUser(ctx, p); err != nil {
		return PostSummary{}, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := checkStruct(in); err != nil {
		return PostSummary{}, err
	}
	content := richtext.Sanitize(in.Content)
	if richtext.PlainText(content) == "" {
		return PostSummary{}, invalid("content", "must contain text")
	}

	now := s.now()
	post := Post{
		ID:        newID(),
		Title:     in.Title,
		Content:   content,
		Tags:      NormalizeTags(in.Tags),
		AuthorID:  p.ID,
		Published: in.Published == nil || *in.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cover != nil {
		u, err := s.storeImage(ctx, "image", coverImage, cover)
		if err != nil {
			return PostSummary{}, err
		}
		post.CoverImage = u
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return PostSummary{}, upstream("create post", err)
	}
	s.tags.Invalidate()
	sum, err := s.store.GetPostSummary(ctx, post.ID, p.ID)
	return sum, upstream("get post", err)
}

// ownedPost loads a post and checks that p may exercise c on it.
func (s *Service) ownedPost(ctx context.Context, p *Principal, c Capability, id string) (Post, error) {
	if p == nil {
		return Post{}, ErrUnauthenticated
	}
	if !validID(id) {
		return Post{}, ErrNotFound
	}
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return Post{}, upstream("get post", err)
	}
	if err := Authorize(p, c, post.AuthorID); err != nil {
		return Post{}, err
	}
	return post, nil
}

// UpdatePost edits a post. Only its author may do so.
func (s *Service) UpdatePost(ctx context.Context, p *Principal, id string, in PostUpdate, cover *ImageUpload) (PostSummary, error) {
	post, err := s.ownedPost(ctx, p, CapEditPost, id)
	if err != nil {
		return PostSummary{}, err
	}
	if in.Title != nil {
		*in.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		*in.Content = strings.TrimSpace(*in.Content)
	}
	if err := checkStruct(in); err != nil {
		return PostSummary{}, err
	}

	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = richtext.Sanitize(*in.Content)
		if richtext.PlainText(post.Content) == "" {
			return PostSummary{}, invalid("content", "must contain text")
		}
	}
	if in.Tags != nil {
		post.Tags = NormalizeTags(*in.Tags)
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if cover != nil {
		u, err := s.storeImage(ctx, "image", coverImage, cover)
		if err != nil {
			return PostSummary{}, err
		}
		post.CoverImage = u
	}
	post.UpdatedAt = s.now()
	if err := s.store.UpdatePost(ctx, post); err != nil {
		return PostSummary{}, upstream("update post", err)
	}
	s.tags.Invalidate()
	sum, err := s.store.GetPostSummary(ctx, post.ID, p.ID)
	return sum, upstream("get post", err)
}

// DeletePost removes a post with its likes and comments. Only its author
// may do so.
func (s *Service) DeletePost(ctx context.Context, p *Principal, id string) error {
	if _, err := s.ownedPost(ctx, p, CapDeletePost, id); err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, id); err != nil {
		return upstream("delete post", err)
	}
	s.tags.Invalidate()
	return nil
}

// Tags lists the distinct tags used by published posts.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.tags.List(ctx)
	return tags, upstream("list tags", err)
}

// PublishedPosts returns every published post for syndication.
func (s *Service) PublishedPosts(ctx context.Context) ([]Post, error) {
	posts, err := s.store.ListPublished(ctx)
	return posts, upstream("list published", err)
}
