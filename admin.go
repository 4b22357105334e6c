package blogapp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/TahaY291/blogapp/logger"
)

const defaultLogLines = 100

func (a *App) handleListUsers(c echo.Context) error {
	users, err := a.Service.ListUsers(c.Request().Context(), CurrentPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]User{"users": users})
}

func (a *App) handleDeleteUser(c echo.Context) error {
	if err := a.Service.DeleteUser(c.Request().Context(), CurrentPrincipal(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleSetRole(c echo.Context) error {
	p := CurrentPrincipal(c)
	if p == nil {
		return ErrUnauthenticated
	}
	var in RoleInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	u, err := a.Service.SetRole(c.Request().Context(), p, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// handleLogs returns the most recent in-memory log lines, newest first.
// Query: n (default 100) and level (default info).
func (a *App) handleLogs(c echo.Context) error {
	if err := Authorize(CurrentPrincipal(c), CapReadLogs, ""); err != nil {
		return err
	}
	n := defaultLogLines
	if v := c.QueryParam("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return invalid("n", "must be a positive integer")
		}
		n = parsed
	}
	level := c.QueryParam("level")
	if level == "" {
		level = "info"
	}
	return c.JSON(http.StatusOK, map[string][]string{"logs": logger.GetLogs(n, level)})
}
