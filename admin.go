package inkpress

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkpress/content"
	"github.com/eringen/inkpress/logger"
)

// handleAdminList queries a collection without forcing the published
// filter, so drafts and scheduled items are reachable.
func (a *App) handleAdminList(c echo.Context) error {
	t, err := content.ParseType(c.Param("type"))
	if err != nil {
		return apiError(err)
	}
	opts, err := parseQueryOptions(c)
	if err != nil {
		return apiError(err)
	}
	res, err := a.Cache.Query(c.Request().Context(), t, opts, a.now())
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, res)
}

type statusCounts struct {
	Draft     int `json:"draft"`
	Scheduled int `json:"scheduled"`
	Published int `json:"published"`
}

type statusResponse struct {
	Type   content.Type          `json:"type"`
	Counts statusCounts          `json:"counts"`
	Items  []content.StatusEntry `json:"items"`
}

func (a *App) handleAdminStatus(c echo.Context) error {
	t, err := content.ParseType(c.Param("type"))
	if err != nil {
		return apiError(err)
	}
	items, err := a.Cache.Items(c.Request().Context(), t)
	if err != nil {
		return err
	}
	entries := content.Statuses(items, a.now())
	resp := statusResponse{Type: t, Items: entries}
	for _, e := range entries {
		switch e.Status {
		case content.StatusDraft:
			resp.Counts.Draft++
		case content.StatusScheduled:
			resp.Counts.Scheduled++
		case content.StatusPublished:
			resp.Counts.Published++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleAdminCalendar(c echo.Context) error {
	items, err := a.Cache.All(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, content.BuildCalendar(items, a.now()))
}

type publishResponse struct {
	Published []content.Published `json:"published"`
}

func (a *App) handleAdminPublish(c echo.Context) error {
	flipped, err := a.RunPublisher(c.Request().Context())
	if err != nil {
		return err
	}
	if flipped == nil {
		flipped = []content.Published{}
	}
	return c.JSON(http.StatusOK, publishResponse{Published: flipped})
}

func (a *App) handleAdminPublishLog(c echo.Context) error {
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	records, err := a.Store.ListPublishLog(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]PublishRecord{"runs": records})
}

func (a *App) handleAdminInvalidate(c echo.Context) error {
	a.Cache.Invalidate()
	logger.InfoWithFields(a.log, "content cache invalidated", logger.Fields{"ip": c.RealIP()})
	return c.NoContent(http.StatusNoContent)
}
