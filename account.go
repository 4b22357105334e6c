package blogapp

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// sessionResponse is returned on login: the token for bearer clients, and
// the same token is also stored in the session cookie for browsers.
type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

func (a *App) handleRegister(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	avatar, done, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer done()
	u, err := a.Service.Register(c.Request().Context(), in, avatar)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return ErrRateLimited
	}
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	if err := c.Validate(in); err != nil {
		return err
	}
	ctx := c.Request().Context()
	p, err := a.Auth.Login(ctx, in.Email, in.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		return err
	}
	if err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)

	token, expires, err := a.Auth.IssueToken(p)
	if err != nil {
		return err
	}
	if err := setSessionToken(c, token); err != nil {
		return err
	}
	u, err := a.Service.Me(ctx, &p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: token, ExpiresAt: expires, User: u})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearSession(c); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleMe(c echo.Context) error {
	u, err := a.Service.Me(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (a *App) handleUpdateMe(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	return a.updateUser(c, p, p.ID)
}

func (a *App) handleUpdateUser(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	return a.updateUser(c, p, c.Param("id"))
}

func (a *App) updateUser(c echo.Context, p *Principal, userID string) error {
	var in ProfileUpdate
	if err := c.Bind(&in); err != nil {
		return err
	}
	avatar, done, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer done()
	u, err := a.Service.UpdateProfile(c.Request().Context(), p, userID, in, avatar)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (a *App) handleProfile(c echo.Context) error {
	var q PageQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return invalid("page", "page and limit must be integers")
	}
	prof, err := a.Service.Profile(c.Request().Context(), CurrentPrincipal(c), c.Param("id"), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prof)
}

// handleCSRF returns the CSRF token that cookie-authenticated clients must
// echo in the X-CSRF-Token header of unsafe requests.
func handleCSRF(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"csrfToken": CsrfToken(c)})
}
