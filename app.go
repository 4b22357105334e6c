// Package blogapp is a multi-user blogging service built with Go, Echo and
// SQLite. It provides accounts, rich-text posts with cover images, likes,
// comments, author profiles with engagement stats, a paginated feed, RSS
// and a sitemap.
package blogapp

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"github.com/TahaY291/blogapp/logger"
)

// App is the central blogapp application. It wires together the store,
// service, authenticator, middleware and routes.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Service *Service
	Auth    *Authenticator
	Views   ViewFuncs

	images       ImageStore
	tags         *TagCache
	loginLimiter *LoginLimiter
	cron         *cron.Cron
	customRoutes []func(*App)
	staticDir    string
	now          func() time.Time

	initOnce sync.Once
	initErr  error
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     defaultViews(cfg.Name),
		staticDir: "public",
		now:       time.Now,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store and registers middleware and routes. It runs once;
// later calls return the first result.
func (a *App) Init() error {
	a.initOnce.Do(func() {
		a.initErr = a.init()
	})
	return a.initErr
}

func (a *App) init() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("blogapp: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blogapp: init store: %w", err)
	}
	a.Store = store

	if a.images == nil {
		a.images = NewDiskImageStore(a.staticDir)
	}
	a.tags = NewTagCache(a.Store, a.Config.TagCacheTTL)
	a.Service = NewService(a.Store, a.images, a.tags, a.now)
	a.Service.pageSize = a.Config.PageSize
	a.Auth = NewAuthenticator(a.Store, a.Config.SessionSecret, a.Config.SessionTTL, a.now)

	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, time.Minute)
	a.cron = cron.New()
	if _, err := a.cron.AddFunc("@every 1m", a.loginLimiter.Prune); err != nil {
		return fmt.Errorf("blogapp: schedule limiter prune: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app, starts background jobs and serves HTTP until
// the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.cron.Start()
	logger.Infof("listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	api := e.Group("/api")

	api.POST("/register", a.handleRegister)
	api.POST("/login", a.handleLogin)
	api.POST("/logout", a.handleLogout)
	api.GET("/auth/me", a.handleMe)
	api.PATCH("/auth/me", a.handleUpdateMe)
	api.GET("/auth/csrf", handleCSRF)

	api.GET("/posts", a.handleListPosts)
	api.POST("/posts", a.handleCreatePost)
	api.GET("/posts/:id", a.handleGetPost)
	api.PUT("/posts/:id", a.handleUpdatePost)
	api.DELETE("/posts/:id", a.handleDeletePost)
	api.GET("/tags", a.handleTags)

	api.POST("/likes", a.handleToggleLike)
	api.POST("/comments", a.handleCreateComment)
	api.PUT("/comments/:id", a.handleUpdateComment)
	api.DELETE("/comments/:id", a.handleDeleteComment)

	api.GET("/users", a.handleListUsers)
	api.GET("/users/:id", a.handleProfile)
	api.PUT("/users/:id", a.handleUpdateUser)
	api.DELETE("/users/:id", a.handleDeleteUser)
	api.PUT("/users/:id/role", a.handleSetRole)
	api.GET("/admin/logs", a.handleLogs)
}

// Close stops background jobs and releases resources. Call this when the
// app is shutting down.
func (a *App) Close() error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if c, ok := a.images.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			logger.Warningf("close image store: %v", err)
		}
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
