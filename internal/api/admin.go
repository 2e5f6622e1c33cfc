package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"waiwaier/internal/schema"
)

// POST /api/admin/reload
// The body may replace any of the workspace sources; omitted ones are kept.
func AdminReloadHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		src := ws.Sources()
		if c.Request.ContentLength > 0 {
			var req Sources
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
				return
			}
			if s := strings.TrimSpace(req.Schema); s != "" {
				src.Schema = s
			}
			if s := strings.TrimSpace(req.Settings); s != "" {
				src.Settings = s
			}
			if s := strings.TrimSpace(req.Samples); s != "" {
				src.Samples = s
			}
		}

		if err := ws.Reload(src); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reload failed", "details": err.Error()})
			return
		}

		tables, settings, _ := ws.Snapshot()
		issues := schema.Lint(tables)
		if issues == nil {
			issues = []schema.Issue{}
		}
		log.Printf("workspace reloaded from %q: %d tables, %d lint issues", src.Schema, len(tables), len(issues))

		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"schema":      src.Schema,
			"settings":    src.Settings,
			"samples":     src.Samples,
			"tables":      len(tables),
			"hasSettings": settings != nil,
			"issues":      issues,
		})
	}
}
