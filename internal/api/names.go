package api

import (
	"waiwaier/internal/schema"
)

// lookupTable resolves a path segment to a workspace table by id or by
// unique case-insensitive name.
func (w *Workspace) lookupTable(name string) (*schema.Table, []schema.Table, schema.Settings, bool) {
	tables, settings, _ := w.Snapshot()
	t, ok := schema.TableByName(tables, name)
	return t, tables, settings, ok
}
