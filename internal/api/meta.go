package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"waiwaier/internal/notes"
	"waiwaier/internal/schema"
)

type metaTableListItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Columns int    `json:"columns"`
	Label   string `json:"label,omitempty"`
	Excel   bool   `json:"excel"`
}

// GET /api/meta
func MetaListHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		tables, _, _ := ws.Snapshot()
		out := make([]metaTableListItem, 0, len(tables))
		for i := range tables {
			t := &tables[i]
			out = append(out, metaTableListItem{
				ID:      t.ID,
				Name:    t.Name,
				Columns: len(t.Columns),
				Label:   notes.EffectiveLabel(t),
				Excel:   t.ExportsTo(schema.TargetExcel),
			})
		}
		c.JSON(http.StatusOK, gin.H{"project": ws.ProjectName(), "tables": out})
	}
}

type metaColumn struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	IsKey   bool   `json:"isKey"`
	IsLabel bool   `json:"isLabel"`
	Note    string `json:"note"`
	Raw     bool   `json:"raw,omitempty"`
}

// GET /api/meta/:table
func MetaTableHandler(ws *Workspace) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, tables, settings, ok := ws.lookupTable(c.Param("table"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
		label := notes.EffectiveLabel(t)
		cols := make([]metaColumn, 0, len(t.Columns))
		for i := range t.Columns {
			col := &t.Columns[i]
			n := notes.ColumnNote(t, col, tables, settings)
			text := ""
			if n.Attach() {
				text = n.Text
			}
			cols = append(cols, metaColumn{
				ID:      col.ID,
				Name:    col.Name,
				Type:    col.Type,
				IsKey:   col.IsKey,
				IsLabel: label != "" && col.ID == label,
				Note:    text,
				Raw:     n.Raw,
			})
		}
		c.JSON(http.StatusOK, gin.H{"id": t.ID, "name": t.Name, "description": t.Description, "columns": cols})
	}
}
