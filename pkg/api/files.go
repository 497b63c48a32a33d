package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/files"
	"github.com/manzanit0/tourplanner/pkg/whttp"
)

const markdownContentType = "text/markdown; charset=utf-8"

type FileController struct {
	files *files.Service
}

func NewFileController(f *files.Service) *FileController {
	return &FileController{files: f}
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (fc *FileController) Export(c *gin.Context) {
	var b bytes.Buffer
	if err := fc.files.Export(c.Request.Context(), &b); err != nil {
		whttp.HandleError(c, err)
		return
	}

	attachment(c, files.ExportFilename)
	c.Data(http.StatusOK, "application/json", b.Bytes())
}

func (fc *FileController) Import(c *gin.Context) {
	res, err := fc.files.Import(c.Request.Context(), c.Request.Body)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (fc *FileController) TourReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	report, err := fc.files.TourReport(c.Request.Context(), id)
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	attachment(c, files.TourReportFilename(id))
	c.Data(http.StatusOK, markdownContentType, []byte(report))
}

func (fc *FileController) SummaryReport(c *gin.Context) {
	report, err := fc.files.SummaryReport(c.Request.Context())
	if err != nil {
		whttp.HandleError(c, err)
		return
	}

	attachment(c, files.SummaryFilename)
	c.Data(http.StatusOK, markdownContentType, []byte(report))
}
