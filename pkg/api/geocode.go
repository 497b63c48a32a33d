package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/geocode"
	"github.com/manzanit0/tourplanner/pkg/whttp"
)

type GeocodeController struct {
	geocoder geocode.Client
}

func NewGeocodeController(g geocode.Client) *GeocodeController {
	return &GeocodeController{geocoder: g}
}

func (gc *GeocodeController) Search(c *gin.Context) {
	q := geocode.NormalizeQuery(c.Query("q"))
	if q == "" {
		whttp.BadRequest(c, "query parameter q is required")
		return
	}

	loc, err := gc.geocoder.Geocode(c.Request.Context(), q)
	if errors.Is(err, geocode.ErrNoResults) {
		whttp.HandleError(c, apperr.NotFound("no results for %q", q))
		return
	} else if err != nil {
		whttp.HandleError(c, apperr.External("geocoding failed", err))
		return
	}

	c.JSON(http.StatusOK, loc)
}

func (gc *GeocodeController) Reverse(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		whttp.BadRequest(c, "lat must be a number between -90 and 90")
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		whttp.BadRequest(c, "lon must be a number between -180 and 180")
		return
	}

	loc, err := gc.geocoder.ReverseGeocode(c.Request.Context(), lat, lon)
	if errors.Is(err, geocode.ErrNoResults) {
		whttp.HandleError(c, apperr.NotFound("no address at %f,%f", lat, lon))
		return
	} else if err != nil {
		whttp.HandleError(c, apperr.External("reverse geocoding failed", err))
		return
	}

	c.JSON(http.StatusOK, loc)
}
