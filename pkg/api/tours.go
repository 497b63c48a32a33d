package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/tours"
	"github.com/manzanit0/tourplanner/pkg/whttp"
)

type TourController struct {
	tours *tours.Service
	logs  *tours.LogService
}

func NewTourController(t *tours.Service, l *tours.LogService) *TourController {
	return &TourController{tours: t, logs: l}
}

func (tc *TourController) List(c *gin.Context) {
	all, err := tc.tours.List(c.Request.Context())
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, all)
}

func (tc *TourController) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	t, err := tc.tours.Get(c.Request.Context(), id)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (tc *TourController) Create(c *gin.Context) {
	var in tours.TourInput
	if err := c.ShouldBindJSON(&in); err != nil {
		whttp.BadRequest(c, "malformed request body")
		return
	}

	t, err := tc.tours.Create(c.Request.Context(), in)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (tc *TourController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var in tours.TourInput
	if err := c.ShouldBindJSON(&in); err != nil {
		whttp.BadRequest(c, "malformed request body")
		return
	}

	t, err := tc.tours.Update(c.Request.Context(), id, in)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (tc *TourController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := tc.tours.Delete(c.Request.Context(), id); err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (tc *TourController) ListLogs(c *gin.Context) {
	tourID, ok := idParam(c, "id")
	if !ok {
		return
	}

	logs, err := tc.logs.List(c.Request.Context(), tourID)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (tc *TourController) GetLog(c *gin.Context) {
	tourID, logID, ok := logParams(c)
	if !ok {
		return
	}

	l, err := tc.logs.Get(c.Request.Context(), tourID, logID)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

func (tc *TourController) CreateLog(c *gin.Context) {
	tourID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var in tours.LogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		whttp.BadRequest(c, "malformed request body")
		return
	}

	l, err := tc.logs.Create(c.Request.Context(), tourID, in)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, l)
}

func (tc *TourController) UpdateLog(c *gin.Context) {
	tourID, logID, ok := logParams(c)
	if !ok {
		return
	}

	var in tours.LogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		whttp.BadRequest(c, "malformed request body")
		return
	}

	l, err := tc.logs.Update(c.Request.Context(), tourID, logID, in)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, l)
}

func (tc *TourController) DeleteLog(c *gin.Context) {
	tourID, logID, ok := logParams(c)
	if !ok {
		return
	}

	if err := tc.logs.Delete(c.Request.Context(), tourID, logID); err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		whttp.BadRequest(c, name+" must be a positive integer")
		return 0, false
	}

	return id, true
}

func logParams(c *gin.Context) (int64, int64, bool) {
	tourID, ok := idParam(c, "id")
	if !ok {
		return 0, 0, false
	}

	logID, ok := idParam(c, "logId")
	if !ok {
		return 0, 0, false
	}

	return tourID, logID, true
}
