package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"waiwaier/internal/sample"
	"waiwaier/internal/schema"
	"waiwaier/internal/store"
)

// requestProject is the body accepted by the preview, lint, ddl and export
// endpoints. Samples are only used by export.
type requestProject struct {
	schema.Project
	Samples sample.Set `json:"samples,omitempty"`
}

// projectFrom returns the posted project, or the workspace when the request
// has no body. It writes the error response itself and reports false.
func projectFrom(c *gin.Context, ws *Workspace) ([]schema.Table, schema.Settings, sample.Set, bool) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		tables, settings, samples := ws.Snapshot()
		return tables, settings, samples, true
	}
	var req requestProject
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON", "details": err.Error()})
		return nil, nil, nil, false
	}
	if errs := validateProject(&req.Project); len(errs) > 0 {
		c.JSON(statusForErrors(errs), gin.H{"errors": errs})
		return nil, nil, nil, false
	}
	schema.AssignIDs(req.Tables)
	return req.Tables, req.Settings, req.Samples, true
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidProjectID), errors.Is(err, store.ErrPathEscape):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDecrypt):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
