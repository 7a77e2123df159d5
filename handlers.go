package inkpress

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/content"
	"github.com/eringen/inkpress/logger"
)

const homePageSize = 10

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	now := a.now()
	tag := strings.TrimSpace(c.QueryParam("tag"))

	published := true
	opts := content.QueryOptions{Published: &published, Limit: homePageSize}
	if tag != "" {
		opts.Tags = []string{tag}
	}
	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			n = 1
		}
		opts.Page = n
	}

	page, err := a.Cache.Query(ctx, content.TypePost, opts, now)
	if err != nil {
		return err
	}
	tags, err := a.Cache.Tags(ctx, content.TypePost, now)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(page, tag, tags, a.Config))
}

// itemHandler serves the HTML page of a visible item of type t.
func (a *App) itemHandler(t content.Type) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		now := a.now()
		item, err := a.Cache.Get(ctx, t, c.Param("slug"))
		if errors.Is(err, ErrNotFound) || (err == nil && !item.VisibleAt(now)) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		if err != nil {
			return err
		}
		pool, err := a.Cache.Visible(ctx, t, now)
		if err != nil {
			return err
		}
		return Render(c, a.Views.Item(item, FilterRelated(item, pool), a.Config))
	}
}

func (a *App) handleAPIList(c echo.Context) error {
	t, err := content.ParseType(c.Param("type"))
	if err != nil {
		return apiError(err)
	}
	opts, err := parseQueryOptions(c)
	if err != nil {
		return apiError(err)
	}
	published := true
	opts.Published = &published

	res, err := a.Cache.Query(c.Request().Context(), t, opts, a.now())
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *App) handleAPIItem(c echo.Context) error {
	t, err := content.ParseType(c.Param("type"))
	if err != nil {
		return apiError(err)
	}
	item, err := a.Cache.Get(c.Request().Context(), t, c.Param("slug"))
	if errors.Is(err, ErrNotFound) || (err == nil && !item.VisibleAt(a.now())) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s %q not found", t, c.Param("slug")))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

type searchResponse struct {
	Query string         `json:"query"`
	Total int            `json:"total"`
	Data  []content.Item `json:"data"`
}

func (a *App) handleAPISearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	var types []content.Type
	if raw := c.QueryParam("type"); raw != "" {
		t, err := content.ParseType(raw)
		if err != nil {
			return apiError(err)
		}
		types = append(types, t)
	}
	items, err := a.Cache.Search(c.Request().Context(), q, a.now(), types...)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, searchResponse{Query: q, Total: len(items), Data: items})
}

func (a *App) handleAPITags(c echo.Context) error {
	t, err := content.ParseType(c.Param("type"))
	if err != nil {
		return apiError(err)
	}
	tags, err := a.Cache.Tags(c.Request().Context(), t, a.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]string{"tags": tags})
}

func (a *App) handleSitemap(c echo.Context) error {
	items, err := a.visibleAll(c)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, items)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.Visible(c.Request().Context(), content.TypePost, a.now())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) visibleAll(c echo.Context) ([]content.Item, error) {
	var all []content.Item
	for _, t := range content.Types {
		items, err := a.Cache.Visible(c.Request().Context(), t, a.now())
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/robots.txt")
}

// parseQueryOptions reads QueryOptions from the request. Malformed numbers
// and booleans are validation errors.
func parseQueryOptions(c echo.Context) (content.QueryOptions, error) {
	opts := content.QueryOptions{
		Category:  strings.TrimSpace(c.QueryParam("category")),
		Search:    firstParam(c, "q", "search"),
		SortBy:    content.SortKey(c.QueryParam("sortBy")),
		SortOrder: content.SortOrder(strings.ToLower(c.QueryParam("sortOrder"))),
	}
	if raw := c.QueryParam("tags"); raw != "" {
		opts.Tags = content.NormalizeTags(raw)
	}
	var err error
	if opts.Page, err = intParam(c, "page"); err != nil {
		return opts, err
	}
	if opts.Limit, err = intParam(c, "limit"); err != nil {
		return opts, err
	}
	if opts.Featured, err = boolParam(c, "featured"); err != nil {
		return opts, err
	}
	if opts.Published, err = boolParam(c, "published"); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

func firstParam(c echo.Context, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(c.QueryParam(n)); v != "" {
			return v
		}
	}
	return ""
}

func intParam(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func boolParam(c echo.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be true or false", name))
	}
	return &b, nil
}

// apiError maps validation failures to 400 and passes everything else on.
func apiError(err error) error {
	if content.IsValidation(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return err
}

func isJSONPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		logger.ErrorWithFields(a.log, "server error", logger.Fields{
			"path":  c.Request().URL.Path,
			"error": err.Error(),
		})
	}

	if isJSONPath(c.Request().URL.Path) {
		msg := http.StatusText(code)
		if ok && code < 500 {
			msg = fmt.Sprint(he.Message)
		}
		_ = c.JSON(code, map[string]string{"error": msg})
		return
	}
	switch {
	case code == http.StatusNotFound && a.Views.NotFound != nil:
		_ = RenderStatus(c, code, a.Views.NotFound())
	case code >= 500 && a.Views.ServerError != nil:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
