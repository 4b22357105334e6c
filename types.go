package blogapp

import "time"

// Role is the coarse permission level attached to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a persisted account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio,omitempty"`
	Image        string    `json:"image,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Author is the public projection of a User embedded in read models.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
}

// Post is a stored article. Views only ever grows.
type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CoverImage string    `json:"coverImage,omitempty"`
	Tags       []string  `json:"tags"`
	AuthorID   string    `json:"authorId"`
	Views      int       `json:"views"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Like marks that a user likes a post. At most one exists per (user, post).
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a short text reply on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentView is a comment joined with its author's public fields.
type CommentView struct {
	Comment
	User Author `json:"user"`
}

// PostSummary is a post enriched with engagement counts computed at read
// time for one viewer. Counts are never stored.
type PostSummary struct {
	Post
	Author         Author `json:"author"`
	Excerpt        string `json:"excerpt"`
	ReadingMinutes int    `json:"readingMinutes"`
	LikesCount     int    `json:"likesCount"`
	CommentsCount  int    `json:"commentsCount"`
	IsLiked        bool   `json:"isLiked"`
}

// PostDetail is the full single-post view.
type PostDetail struct {
	PostSummary
	Comments []CommentView `json:"comments"`
}

// Page is one page of post summaries.
type Page struct {
	Posts       []PostSummary `json:"posts"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalPosts  int           `json:"totalPosts"`
	Limit       int           `json:"limit"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// viewerID returns the id used for isLiked, or "" for anonymous viewers.
func viewerID(p *Principal) string {
	if p == nil {
		return ""
	}
	return p.ID
}
