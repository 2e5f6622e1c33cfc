package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxValueSize = 8 << 20

func requireKV(c *gin.Context, ws *Workspace) bool {
	if ws.KV == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "project store not configured"})
		return false
	}
	return true
}

// GET /api/projects/:project/kv/:key
func KVGetHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireKV(c, ws) {
			return
		}
		v, err := ws.KV.Load(c.Request.Context(), c.Param("project"), c.Param("key"))
		if err != nil {
			c.JSON(storeStatus(err), gin.H{"error": err.Error()})
			return
		}
		ct := "text/plain; charset=utf-8"
		if json.Valid([]byte(v)) {
			ct = "application/json; charset=utf-8"
		}
		c.Data(http.StatusOK, ct, []byte(v))
	}
}

// PUT /api/projects/:project/kv/:key
// The raw body is stored as the value.
func KVPutHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireKV(c, ws) {
			return
		}
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxValueSize+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
			return
		}
		if len(body) > maxValueSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "value too large"})
			return
		}
		if err := ws.KV.Save(c.Request.Context(), c.Param("project"), c.Param("key"), string(body)); err != nil {
			c.JSON(storeStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DELETE /api/projects/:project/kv/:key
func KVDeleteHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireKV(c, ws) {
			return
		}
		if err := ws.KV.Delete(c.Request.Context(), c.Param("project"), c.Param("key")); err != nil {
			c.JSON(storeStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DELETE /api/projects/:project
func ProjectDeleteHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireKV(c, ws) {
			return
		}
		if err := ws.KV.DeleteProject(c.Request.Context(), c.Param("project")); err != nil {
			c.JSON(storeStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
