package blogapp

import "time"

// SiteConfig holds all configuration for a blogapp server.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")

	SessionSecret string        // Required: signs session tokens and cookies
	SessionTTL    time.Duration // Session lifetime (default 30 days)
	CookieSecure  bool          // Set true for HTTPS

	PageSize      int           // Feed page size when no limit is given (default 5)
	TagCacheTTL   time.Duration // Tag list cache TTL (default 5min)
	LoginAttempts int           // Failed logins allowed per IP per minute (default 5)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = SessionTTL
	}
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		c.PageSize = DefaultPageSize
	}
	if c.TagCacheTTL == 0 {
		c.TagCacheTTL = 5 * time.Minute
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets and disk uploads
// (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithImageStore replaces the default disk image store, e.g. with a
// GCSImageStore.
func WithImageStore(s ImageStore) Option {
	return func(a *App) {
		a.images = s
	}
}

// WithClock overrides time.Now for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithViews overrides the error pages rendered for browser requests.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		if v.NotFound != nil {
			a.Views.NotFound = v.NotFound
		}
		if v.ServerError != nil {
			a.Views.ServerError = v.ServerError
		}
	}
}
