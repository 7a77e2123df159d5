package inkpress

import (
	"time"

	"github.com/eringen/inkpress/logger"
)

// SiteConfig holds all configuration for an inkpress site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	ContentDir   string // Markdown root holding posts/, pages/, reviews/ (default "content")
	StaticDir    string // User-owned static assets and uploads (default "public")
	DatabasePath string // SQLite path for media and publish log (default "data/inkpress.db")

	AdminKey string // Required: key for the /admin routes

	CacheTTL        time.Duration // Content cache TTL (default 30s)
	PublishInterval time.Duration // Publish scheduler tick (default 1m, negative disables)

	Sanitize       bool     // Run rendered HTML through bluemonday
	CORSOrigins    []string // Allowed origins for /api (default "*")
	WordsPerMinute int      // Reading speed for post reading time (default 200)
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
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/inkpress.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 30 * time.Second
	}
	if c.PublishInterval == 0 {
		c.PublishInterval = time.Minute
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.WordsPerMinute <= 0 {
		c.WordsPerMinute = 200
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the process logger for the app and its content engine.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// WithClock overrides the time source used for status and scheduling.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
