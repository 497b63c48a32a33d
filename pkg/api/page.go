package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/mapview"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type PageController struct {
	maps *mapview.Registry
}

func NewPageController(maps *mapview.Registry) *PageController {
	return &PageController{maps: maps}
}

type indexData struct {
	MapID    string
	Snapshot mapview.Snapshot
}

// Index opens a new map session and serves the widget bound to it.
func (pc *PageController) Index(c *gin.Context) {
	id, m := pc.maps.Open(defaultContainer)

	c.HTML(http.StatusOK, "index.html", indexData{MapID: id, Snapshot: m.Snapshot()})
}
