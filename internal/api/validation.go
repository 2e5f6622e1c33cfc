package api

import (
	"fmt"
	"net/http"
	"strings"

	"waiwaier/internal/schema"
)

// FieldError points at the offending table or column of a posted project.
type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

// validateProject rejects documents the exporter cannot work with. Semantic
// problems (dangling refs, bad patterns) are lint issues, not errors.
func validateProject(p *schema.Project) []FieldError {
	var errs []FieldError
	if len(p.Tables) == 0 {
		errs = append(errs, ferr("required", "tables", "at least one table is required"))
	}
	ids := map[string]int{}
	for i, t := range p.Tables {
		field := fmt.Sprintf("tables[%d]", i)
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, ferr("required", field+".name", "table name is required"))
		}
		if t.ID != "" {
			if prev, dup := ids[t.ID]; dup {
				errs = append(errs, ferr("duplicate", field+".id",
					fmt.Sprintf("table id %q already used by tables[%d]", t.ID, prev)))
			}
			ids[t.ID] = i
		}
		for j, c := range t.Columns {
			if strings.TrimSpace(c.Name) == "" {
				errs = append(errs, ferr("required", fmt.Sprintf("%s.columns[%d].name", field, j), "column name is required"))
			}
		}
	}
	return errs
}

func statusForErrors(errs []FieldError) int {
	for _, e := range errs {
		if e.Code == "duplicate" {
			return http.StatusConflict
		}
	}
	return http.StatusUnprocessableEntity
}
