package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"waiwaier/internal/workbook"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// POST /api/export?includeData=&maxRows=
func ExportHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ws.Blob == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "blob store not configured"})
			return
		}
		tables, settings, samples, ok := projectFrom(c, ws)
		if !ok {
			return
		}
		q := c.Request.URL.Query()
		opts := workbook.Options{
			IncludeData:   queryBool(q, "includeData", ws.IncludeData),
			Samples:       samples,
			MaxSampleRows: queryInt(q, "maxRows", ws.MaxSampleRows),
		}

		var buf bytes.Buffer
		if err := workbook.Write(&buf, tables, settings, opts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed", "details": err.Error()})
			return
		}

		now := time.Now().UTC()
		key := fmt.Sprintf("%04d/%02d/%s.xlsx", now.Year(), int(now.Month()), ws.newID())
		size, sum, err := ws.Blob.Put(key, &buf)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store error", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"key":    key,
			"size":   size,
			"sha256": sum,
			"url":    "/api/exports/" + key,
		})
	}
}

// GET /api/exports/*key
func DownloadExportHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ws.Blob == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "blob store not configured"})
			return
		}
		p, err := ws.Blob.Path(c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if st, err := os.Stat(p); errors.Is(err, os.ErrNotExist) || (err == nil && st.IsDir()) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Export not found"})
			return
		}

		name := ws.ProjectName()
		if name == "" {
			name = "export"
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s"`, name, path.Base(c.Param("key"))))
		c.Header("Content-Type", xlsxMime)
		c.File(p)
	}
}
