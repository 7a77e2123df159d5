// Package inkpress serves a markdown-on-disk blog: posts, pages and reviews
// are read from a content directory, queried through a JSON API and rendered
// with user-provided templ components. Scheduled items go live on their own
// through a background publisher.
package inkpress

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/content"
	"github.com/eringen/inkpress/logger"
)

// ViewFuncs holds user-provided templ components that the app calls when
// rendering HTML pages.
type ViewFuncs struct {
	Home        func(page content.Result, activeTag string, tags []string, site SiteConfig) templ.Component
	Item        func(item content.Item, related []content.Item, site SiteConfig) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central inkpress application. It wires together the content
// repository, cache, store, handlers, middleware and templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Store     *Store
	Repo      *content.Repository
	Publisher *content.Publisher
	Cache     *ContentCache
	Views     ViewFuncs

	log          logger.Logger
	now          func() time.Time
	authLimiter  *AuthLimiter
	customRoutes []func(*App)
	stopSchedule func()
	watcher      *ContentWatcher
	initialized  bool
}

// New creates an App for cfg. Nothing touches the disk until Init or Start.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		log:    logger.Log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	contentOpts := []content.Option{
		content.WithLogger(a.log),
		content.WithBuilderConfig(content.BuilderConfig{
			SiteURL:        cfg.URL,
			Sanitize:       cfg.Sanitize,
			WordsPerMinute: cfg.WordsPerMinute,
		}),
	}
	a.Repo = content.NewRepository(cfg.ContentDir, contentOpts...)
	a.Publisher = content.NewPublisher(cfg.ContentDir, contentOpts...)
	a.Cache = NewContentCache(a.Repo, cfg.CacheTTL)
	a.Echo.HideBanner = true
	return a
}

// Init opens the store, starts the content watcher and registers middleware
// and routes. Start calls it; tests call it directly and drive a.Echo with
// httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.AdminKey == "" {
		return fmt.Errorf("inkpress: AdminKey is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkpress: init store: %w", err)
	}
	watcher, err := WatchContent(a.Config.ContentDir, a.Cache, a.log)
	if err != nil {
		store.Close()
		return fmt.Errorf("inkpress: watch content: %w", err)
	}
	a.Store = store
	a.watcher = watcher
	a.authLimiter = NewAuthLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app, starts the publish scheduler and serves HTTP
// until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if a.Config.PublishInterval > 0 {
		a.stopSchedule = a.StartPublishScheduler(a.Config.PublishInterval)
	}

	logger.InfoWithFields(a.log, "inkpress listening", logger.Fields{
		"addr":    a.Config.Addr,
		"content": a.Config.ContentDir,
	})
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	api := e.Group("/api", a.corsMiddleware())
	api.GET("/search", a.handleAPISearch)
	api.GET("/tags/:type", a.handleAPITags)
	api.GET("/:type", a.handleAPIList)
	api.GET("/:type/:slug", a.handleAPIItem)

	admin := e.Group("/admin", a.adminAuth())
	admin.GET("/api/:type", a.handleAdminList)
	admin.GET("/status/:type/", a.handleAdminStatus)
	admin.GET("/calendar/", a.handleAdminCalendar)
	admin.POST("/publish/", a.handleAdminPublish)
	admin.GET("/publish/log/", a.handleAdminPublishLog)
	admin.POST("/cache/invalidate/", a.handleAdminInvalidate)
	admin.GET("/images/", a.handleImageList)
	admin.POST("/images/", a.handleImageUpload)
	admin.DELETE("/images/:filename/", a.handleImageDelete)

	e.GET("/blog/", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.itemHandler(content.TypePost))
	e.GET("/reviews/:slug/", a.itemHandler(content.TypeReview))
	e.GET("/:slug/", a.itemHandler(content.TypePage))
}

// RunPublisher flips every due item, records the run and invalidates the
// cache when anything changed.
func (a *App) RunPublisher(ctx context.Context) ([]content.Published, error) {
	flipped, err := a.Publisher.PublishDue(ctx, a.now())
	if len(flipped) == 0 {
		return flipped, err
	}
	a.Cache.Invalidate()

	runID := uuid.NewString()
	if a.Store != nil {
		if serr := a.Store.RecordPublishRun(ctx, runID, flipped); serr != nil {
			logger.ErrorWithFields(a.log, "record publish run", logger.Fields{"run": runID, "error": serr.Error()})
		}
	}
	logger.InfoWithFields(a.log, "publish run complete", logger.Fields{"run": runID, "published": len(flipped)})
	return flipped, err
}

// StartPublishScheduler runs the publisher every interval. Returns a stop
// function.
func (a *App) StartPublishScheduler(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := a.RunPublisher(ctx); err != nil {
					logger.ErrorWithFields(a.log, "publish scheduler run failed", logger.Fields{"error": err.Error()})
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		cancel()
		close(done)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stopSchedule != nil {
		a.stopSchedule()
		a.stopSchedule = nil
	}
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	if a.authLimiter != nil {
		a.authLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
