// Package workbook writes the exported schema as an xlsx workbook: one sheet
// per table, the header row annotated with AppSheet notes.
package workbook

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"waiwaier/internal/notes"
	"waiwaier/internal/sample"
	"waiwaier/internal/schema"
)

const (
	minColumnWidth = 12
	maxColumnWidth = 255
	maxSheetName   = 31
	defaultSheet   = "Sheet1"
	noteAuthor     = "waiwaier"
)

type Options struct {
	// IncludeData writes sample rows below the header.
	IncludeData bool
	Samples     sample.Set
	// MaxSampleRows caps rows per sheet; zero or less writes all of them.
	MaxSampleRows int
}

// Summary counts what a build wrote.
type Summary struct {
	Sheets int
	Notes  int
}

// Build renders tables exported to Excel into a new workbook. References
// resolve against every table, exported or not.
func Build(tables []schema.Table, settings schema.Settings, opts Options) (*excelize.File, error) {
	f, _, err := build(tables, settings, opts)
	return f, err
}

func build(tables []schema.Table, settings schema.Settings, opts Options) (*excelize.File, Summary, error) {
	var sum Summary
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E5E7EB"}},
		Border: thinBorder(),
	})
	if err != nil {
		_ = f.Close()
		return nil, sum, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		_ = f.Close()
		return nil, sum, err
	}

	names := map[string]bool{}
	first := true
	for i := range tables {
		t := &tables[i]
		if !t.ExportsTo(schema.TargetExcel) {
			continue
		}

		sheet := SheetName(t.Name, names)
		if first {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				_ = f.Close()
				return nil, sum, err
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			_ = f.Close()
			return nil, sum, err
		}

		n, err := writeTable(f, sheet, t, tables, settings, opts, headerStyle, dataStyle)
		if err != nil {
			_ = f.Close()
			return nil, sum, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		sum.Sheets++
		sum.Notes += n
	}
	return f, sum, nil
}

// writeTable fills one sheet and reports how many notes it attached.
func writeTable(f *excelize.File, sheet string, t *schema.Table, tables []schema.Table, settings schema.Settings, opts Options, headerStyle, dataStyle int) (int, error) {
	for i, c := range t.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return 0, err
		}
		cell := col + "1"
		if err := f.SetColWidth(sheet, col, col, columnWidth(c.Name)); err != nil {
			return 0, err
		}
		if err := f.SetCellStr(sheet, cell, c.Name); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return 0, err
		}
	}

	cellNotes := notes.TableNotes(t, tables, settings)
	for _, n := range cellNotes {
		cell, err := excelize.CoordinatesToCellName(n.Col+1, n.Row+1)
		if err != nil {
			return 0, err
		}
		if err := f.AddComment(sheet, excelize.Comment{Cell: cell, Author: noteAuthor, Text: n.Text}); err != nil {
			return 0, err
		}
	}

	if !opts.IncludeData {
		return len(cellNotes), nil
	}
	rows := opts.Samples.Rows(t)
	if opts.MaxSampleRows > 0 && len(rows) > opts.MaxSampleRows {
		rows = rows[:opts.MaxSampleRows]
	}
	for r, row := range rows {
		for i := range t.Columns {
			v, ok := sample.Cell(row, &t.Columns[i])
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellStr(sheet, cell, sample.Render(v)); err != nil {
				return 0, err
			}
			if err := f.SetCellStyle(sheet, cell, cell, dataStyle); err != nil {
				return 0, err
			}
		}
	}
	return len(cellNotes), nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, tables []schema.Table, settings schema.Settings, opts Options) error {
	f, err := Build(tables, settings, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// Save builds the workbook and writes it to path.
func Save(path string, tables []schema.Table, settings schema.Settings, opts Options) (Summary, error) {
	f, sum, err := build(tables, settings, opts)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func thinBorder() []excelize.Border {
	var out []excelize.Border
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return out
}

func columnWidth(name string) float64 {
	w := len(name)
	if w < minColumnWidth {
		w = minColumnWidth
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return float64(w)
}

// SheetName makes a valid, unused sheet name from a table name: characters
// Excel rejects become "_", the result is cut to 31 characters and clashes
// get a " (n)" suffix. used is updated.
func SheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = "Sheet"
	}
	clean = truncate(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(clean, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
