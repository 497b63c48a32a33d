package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/mapview"
	"github.com/manzanit0/tourplanner/pkg/search"
	"github.com/manzanit0/tourplanner/pkg/whttp"
)

const defaultContainer = "map"

type MapController struct {
	maps   *mapview.Registry
	search *search.Handler
}

func NewMapController(maps *mapview.Registry, s *search.Handler) *MapController {
	return &MapController{maps: maps, search: s}
}

type createMapRequest struct {
	Container string `json:"container"`
}

type mapResponse struct {
	ID string `json:"id"`
	mapview.Snapshot
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Applied bool              `json:"applied"`
	Outcome search.Outcome    `json:"outcome"`
	View    mapview.ViewState `json:"view"`
	Markers []mapview.Marker  `json:"markers"`
}

func (mc *MapController) Create(c *gin.Context) {
	// The body is optional, and chunked bodies carry no content length.
	var req createMapRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		err := c.ShouldBindJSON(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			whttp.BadRequest(c, "malformed request body")
			return
		}
	}

	if req.Container == "" {
		req.Container = defaultContainer
	}

	id, m := mc.maps.Open(req.Container)
	c.JSON(http.StatusCreated, mapResponse{ID: id, Snapshot: m.Snapshot()})
}

func (mc *MapController) Get(c *gin.Context) {
	m, ok := mc.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, mapResponse{ID: c.Param("id"), Snapshot: m.Snapshot()})
}

func (mc *MapController) Delete(c *gin.Context) {
	mc.maps.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Search never fails towards the widget: lookup errors are logged and the
// unchanged view is returned with applied=false.
func (mc *MapController) Search(c *gin.Context) {
	m, ok := mc.lookup(c)
	if !ok {
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		whttp.BadRequest(c, "malformed request body")
		return
	}

	ctx := c.Request.Context()

	res, err := mc.search.Search(ctx, m, req.Query)
	if err != nil {
		slog.WarnContext(ctx, "map search failed", "map_id", c.Param("id"), "query", res.Query, "error", err.Error())
	}

	s := m.Snapshot()
	c.JSON(http.StatusOK, searchResponse{
		Applied: res.Applied(),
		Outcome: res.Outcome,
		View:    s.View,
		Markers: s.Markers,
	})
}

func (mc *MapController) lookup(c *gin.Context) (*mapview.Map, bool) {
	m, err := mc.maps.Get(c.Param("id"))
	if errors.Is(err, mapview.ErrUnknownMap) {
		whttp.HandleError(c, apperr.Wrap(apperr.KindNotFound, "map session not found", err))
		return nil, false
	} else if err != nil {
		whttp.HandleError(c, err)
		return nil, false
	}

	return m, true
}
