// Package api wires the HTTP surface: the widget page, map sessions,
// geocoding, tours, logs and files.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manzanit0/tourplanner/pkg/files"
	"github.com/manzanit0/tourplanner/pkg/geocode"
	"github.com/manzanit0/tourplanner/pkg/mapview"
	"github.com/manzanit0/tourplanner/pkg/middleware"
	"github.com/manzanit0/tourplanner/pkg/search"
	"github.com/manzanit0/tourplanner/pkg/tours"
)

type Config struct {
	CORSOrigins []string
	Debug       bool
}

type Deps struct {
	Maps     *mapview.Registry
	Search   *search.Handler
	Geocoder geocode.Client
	Tours    *tours.Service
	Logs     *tours.LogService
	Files    *files.Service
}

func NewRouter(cfg Config, d Deps) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(indexTemplate)
	r.Use(middleware.TraceID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(cfg.Debug))
	r.Use(middleware.Metrics())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders:  []string{"Origin", "Content-Type", middleware.HeaderTraceID},
			ExposeHeaders: []string{middleware.HeaderTraceID, "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := NewPageController(d.Maps)
	r.GET("/", pages.Index)

	apiGroup := r.Group("/api")

	maps := NewMapController(d.Maps, d.Search)
	apiGroup.POST("/maps", maps.Create)
	apiGroup.GET("/maps/:id", maps.Get)
	apiGroup.DELETE("/maps/:id", maps.Delete)
	apiGroup.POST("/maps/:id/search", maps.Search)

	geo := NewGeocodeController(d.Geocoder)
	apiGroup.GET("/geocode", geo.Search)
	apiGroup.GET("/geocode/reverse", geo.Reverse)

	if d.Tours != nil {
		tc := NewTourController(d.Tours, d.Logs)
		apiGroup.GET("/tours", tc.List)
		apiGroup.POST("/tours", tc.Create)
		apiGroup.GET("/tours/:id", tc.Get)
		apiGroup.PUT("/tours/:id", tc.Update)
		apiGroup.DELETE("/tours/:id", tc.Delete)

		apiGroup.GET("/tours/:id/logs", tc.ListLogs)
		apiGroup.POST("/tours/:id/logs", tc.CreateLog)
		apiGroup.GET("/tours/:id/logs/:logId", tc.GetLog)
		apiGroup.PUT("/tours/:id/logs/:logId", tc.UpdateLog)
		apiGroup.DELETE("/tours/:id/logs/:logId", tc.DeleteLog)
	}

	if d.Files != nil {
		fc := NewFileController(d.Files)
		apiGroup.GET("/files/export", fc.Export)
		apiGroup.POST("/files/import", fc.Import)
		apiGroup.GET("/files/report/tour/:id", fc.TourReport)
		apiGroup.GET("/files/report/summary", fc.SummaryReport)
	}

	return r
}
