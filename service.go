package blogapp

import (
	"context"
	"time"
)

const (
	// DefaultPageSize is used when a listing request names no limit.
	DefaultPageSize = 5
	// MaxPageSize bounds the limit a client may request.
	MaxPageSize = 50

	excerptLength = 200
)

// Service implements the blog's operations on top of a Store. Every method
// is request-scoped; the Service keeps no per-request state.
type Service struct {
	store    *Store
	images   ImageStore
	tags     *TagCache
	now      func() time.Time
	pageSize int
}

// NewService wires a Service. now may be nil to use time.Now.
func NewService(store *Store, images ImageStore, tags *TagCache, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    store,
		images:   images,
		tags:     tags,
		now:      now,
		pageSize: DefaultPageSize,
	}
}

// PageQuery selects one page of a listing. Zero values mean defaults.
type PageQuery struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Tag   string `query:"tag"`
}

func (s *Service) normalizePage(q PageQuery) (PageQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = s.pageSize
	}
	if q.Page < 1 {
		return q, invalid("page", "must be a positive integer")
	}
	if q.Limit < 1 || q.Limit > MaxPageSize {
		return q, invalid("limit", "must be between 1 and 50")
	}
	return q, nil
}

// totalPages is ceil(total/limit).
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// listPage runs one paginated listing for f. Pages past the end are empty,
// not an error.
func (s *Service) listPage(ctx context.Context, f postFilter, viewer *Principal, q PageQuery) (Page, error) {
	total, err := s.store.CountPosts(ctx, f)
	if err != nil {
		return Page{}, upstream("count posts", err)
	}
	pages := totalPages(total, q.Limit)
	posts := []PostSummary{}
	// Page <= pages keeps the offset below total.
	if q.Page <= pages {
		posts, err = s.store.ListPostSummaries(ctx, f, viewerID(viewer), q.Limit, (q.Page-1)*q.Limit)
		if err != nil {
			return Page{}, upstream("list posts", err)
		}
	}
	return Page{
		Posts:       posts,
		CurrentPage: q.Page,
		TotalPages:  pages,
		TotalPosts:  total,
		Limit:       q.Limit,
	}, nil
}
