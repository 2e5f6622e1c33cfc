package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"waiwaier/internal/ddl"
	"waiwaier/internal/notes"
	"waiwaier/internal/schema"
)

// GET /api/registry?status=&category=
func RegistryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		params := notes.Registry()
		if raw := c.Query("status"); raw != "" {
			st, err := notes.ParseStatus(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			params = notes.ByStatus(st)
		}
		if cat := c.Query("category"); cat != "" {
			filtered := make([]notes.Param, 0, len(params))
			for _, p := range params {
				if string(p.Category) == cat {
					filtered = append(filtered, p)
				}
			}
			params = filtered
		}
		if params == nil {
			params = []notes.Param{}
		}
		c.JSON(http.StatusOK, gin.H{"params": params, "categories": notes.Categories()})
	}
}

// GET /api/registry/:key
func RegistryKeyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := notes.Lookup(c.Param("key"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown key", "status": notes.StatusOf(c.Param("key"))})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// GET /api/settings/defaults
func SettingsDefaultsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, notes.DefaultOutputSettings())
	}
}

// GET|POST /api/preview
func PreviewHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, settings, _, ok := projectFrom(c, ws)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, notes.Preview(tables, settings))
	}
}

// GET|POST /api/lint
func LintHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, _, _, ok := projectFrom(c, ws)
		if !ok {
			return
		}
		issues := schema.Lint(tables)
		if issues == nil {
			issues = []schema.Issue{}
		}
		c.JSON(http.StatusOK, gin.H{"issues": issues})
	}
}

// GET|POST /api/ddl?dialect=&fk=&comments=&drop=
func DDLHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := parseDDLParams(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tables, _, _, ok := projectFrom(c, ws)
		if !ok {
			return
		}
		opts.GeneratedAt = time.Now()
		out, err := ddl.Generate(tables, opts)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.String(http.StatusOK, out+"\n")
	}
}
