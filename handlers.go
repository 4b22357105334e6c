package blogapp

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/TahaY291/blogapp/logger"
)

// errorBody is the JSON shape of every API failure.
type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// errorStatus maps the error taxonomy onto HTTP status codes.
func errorStatus(err error) (int, errorBody) {
	var verr *ValidationError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: ErrValidation.Error(), Details: verr.Fields}
	case errors.As(err, &he):
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		return he.Code, errorBody{Error: msg}
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Error: err.Error()}
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: ErrUnauthenticated.Error()}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorBody{Error: ErrForbidden.Error()}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorBody{Error: ErrNotFound.Error()}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorBody{Error: "email already registered"}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorBody{Error: ErrRateLimited.Error()}
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway, errorBody{Error: "a backing service is unavailable"}
	}
	return http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := errorStatus(err)
	if code >= 500 {
		logger.Errorf("server error: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	if !wantsJSON(c) {
		switch {
		case code == http.StatusNotFound:
			_ = RenderStatus(c, code, a.Views.NotFound())
			return
		case code >= 500:
			_ = RenderStatus(c, code, a.Views.ServerError())
			return
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

// wantsJSON reports whether an error should be rendered as JSON rather
// than an HTML page.
func wantsJSON(c echo.Context) bool {
	r := c.Request()
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		return true
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// formImage returns the optional uploaded image in field. The returned
// cleanup closes the file and is safe to call when there is none.
func formImage(c echo.Context, field string) (*ImageUpload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, invalid(field, "could not read upload")
	}
	return openUpload(fh, field)
}

func openUpload(fh *multipart.FileHeader, field string) (*ImageUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, invalid(field, "could not read upload")
	}
	return &ImageUpload{Filename: fh.Filename, Size: fh.Size, Body: f}, func() { f.Close() }, nil
}

func (a *App) handleListPosts(c echo.Context) error {
	var q PageQuery
	if err := c.Bind(&q); err != nil {
		return invalid("page", "page and limit must be integers")
	}
	page, err := a.Service.Feed(c.Request().Context(), CurrentPrincipal(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Service.PostDetail(c.Request().Context(), CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleCreatePost(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	cover, done, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer done()
	post, err := a.Service.CreatePost(c.Request().Context(), p, in, cover)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

func (a *App) handleUpdatePost(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	var in PostUpdate
	if err := c.Bind(&in); err != nil {
		return err
	}
	cover, done, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer done()
	post, err := a.Service.UpdatePost(c.Request().Context(), p, c.Param("id"), in, cover)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleDeletePost(c echo.Context) error {
	if err := a.Service.DeletePost(c.Request().Context(), CurrentPrincipal(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Service.Tags(c.Request().Context())
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"tags": tags})
}

// likeRequest is the body of POST /api/likes.
type likeRequest struct {
	PostID string `json:"postId" form:"postId"`
}

func (a *App) handleToggleLike(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	var in likeRequest
	if err := c.Bind(&in); err != nil {
		return err
	}
	if in.PostID == "" {
		return invalid("postId", "is required")
	}
	state, err := a.Service.ToggleLike(c.Request().Context(), p, in.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, state)
}

// commentRequest is the body of POST /api/comments.
type commentRequest struct {
	PostID  string `json:"postId" form:"postId"`
	Comment string `json:"comment" form:"comment"`
}

func (a *App) handleCreateComment(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	var in commentRequest
	if err := c.Bind(&in); err != nil {
		return err
	}
	if in.PostID == "" {
		return invalid("postId", "is required")
	}
	cm, err := a.Service.CreateComment(c.Request().Context(), p, in.PostID, CommentInput{Comment: in.Comment})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cm)
}

func (a *App) handleUpdateComment(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	var in CommentInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	cm, err := a.Service.UpdateComment(c.Request().Context(), p, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cm)
}

func (a *App) handleDeleteComment(c echo.Context) error {
	if err := a.Service.DeleteComment(c.Request().Context(), CurrentPrincipal(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Service.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Service.PublishedPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}
