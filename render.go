package blogapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds the templ components rendered for browser requests that
// fail outside the JSON API.
type ViewFuncs struct {
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

func defaultViews(siteName string) ViewFuncs {
	return ViewFuncs{
		NotFound: func() templ.Component {
			return errorPage(siteName, "Page not found", "The page you are looking for does not exist.")
		},
		ServerError: func() templ.Component {
			return errorPage(siteName, "Something went wrong", "Please try again in a moment.")
		},
	}
}

func errorPage(siteName, title, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<!doctype html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>%s | %s</title></head><body><main><h1>%s</h1><p>%s</p><p><a href=\"/\">Home</a></p></main></body></html>",
			templ.EscapeString(title), templ.EscapeString(siteName), templ.EscapeString(title), templ.EscapeString(message))
		return err
	})
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// jsonSerializer encodes API bodies with goccy/go-json.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i any, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i any) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	var ute *json.UnmarshalTypeError
	var se *json.SyntaxError
	switch {
	case errors.As(err, &ute):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid value for field %q", ute.Field)).SetInternal(err)
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("malformed JSON at offset %d", se.Offset)).SetInternal(err)
	}
	return err
}
