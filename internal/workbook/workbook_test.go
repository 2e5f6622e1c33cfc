package workbook

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"waiwaier/internal/notes"
	"waiwaier/internal/sample"
	"waiwaier/internal/schema"
	"waiwaier/internal/value"
)

func testTables(t *testing.T) []schema.Table {
	t.Helper()
	raw, err := value.Parse(`{"Type":null}`)
	require.NoError(t, err)
	obj, _ := raw.AsObject()

	return []schema.Table{
		{ID: "users", Name: "Users", Columns: []schema.Column{
			{ID: "users.email", Name: "Email", Type: "Email", IsKey: true},
			{ID: "users.name", Name: "A very long column header name", Type: "Text", IsLabel: true},
			{ID: "users.hidden", Name: "Hidden", Type: "Text", Overrides: obj},
		}},
		{ID: "audit", Name: "Audit", ExportTargets: []string{"json"}, Columns: []schema.Column{
			{ID: "audit.at", Name: "At", Type: "DateTime"},
		}},
		{ID: "orders", Name: "Orders/2024", Columns: []schema.Column{
			{ID: "orders.owner", Name: "Owner", Type: "Ref", Constraints: schema.Constraints{RefTableID: "users"}},
		}},
	}
}

func commentsByCell(t *testing.T, f *excelize.File, sheet string) map[string]string {
	t.Helper()
	cs, err := f.GetComments(sheet)
	require.NoError(t, err)
	out := map[string]string{}
	for _, c := range cs {
		text := c.Text
		for _, run := range c.Paragraph {
			text += run.Text
		}
		out[c.Cell] = text
	}
	return out
}

func TestBuild(t *testing.T) {
	tables := testTables(t)
	f, err := Build(tables, nil, Options{})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Users", "Orders_2024"}, f.GetSheetList())

	v, err := f.GetCellValue("Users", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Email", v)

	w, err := f.GetColWidth("Users", "A")
	require.NoError(t, err)
	assert.Equal(t, 12.0, w)
	w, err = f.GetColWidth("Users", "B")
	require.NoError(t, err)
	assert.Equal(t, float64(len("A very long column header name")), w)

	preview := notes.Preview(tables, nil)
	comments := commentsByCell(t, f, "Users")
	require.Len(t, comments, 2)
	assert.Contains(t, comments["A1"], preview["users"]["users.email"])
	assert.Contains(t, comments["B1"], `AppSheet:{"Type":"Text"}`)
	_, hasHidden := comments["C1"]
	assert.False(t, hasHidden)
	assert.Equal(t, "", preview["users"]["users.hidden"])

	orders := commentsByCell(t, f, "Orders_2024")
	assert.Contains(t, orders["A1"], `AppSheet:{"Type":"Ref"}`)

	styleID, err := f.GetCellStyle("Users", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.True(t, style.Font.Bold)
}

func TestBuild_SampleRows(t *testing.T) {
	tables := testTables(t)
	row := func(text string) sample.Row {
		v, err := value.Parse(text)
		require.NoError(t, err)
		obj, _ := v.AsObject()
		return obj
	}
	samples := sample.Set{"users": {
		row(`{"users.email": "a@example.com", "A very long column header name": ["x", "y"]}`),
		row(`{"Email": "b@example.com", "Hidden": true}`),
		row(`{"Email": "c@example.com"}`),
	}}

	f, err := Build(tables, nil, Options{IncludeData: true, Samples: samples, MaxSampleRows: 2})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a@example.com", "x, y"}, rows[1])
	assert.Equal(t, []string{"b@example.com", "", "Yes"}, rows[2])

	f2, err := Build(tables, nil, Options{IncludeData: false, Samples: samples})
	require.NoError(t, err)
	defer f2.Close()
	rows, err = f2.GetRows("Users")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteAndSave(t *testing.T) {
	tables := testTables(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tables, schema.Settings{"Type": true}, Options{}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 2)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	sum, err := Save(path, tables, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Sheets: 2, Notes: 3}, sum)
	g, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer g.Close()
	assert.Equal(t, []string{"Users", "Orders_2024"}, g.GetSheetList())
}

func TestBuild_NoExcelTables(t *testing.T) {
	f, err := Build([]schema.Table{{ID: "a", Name: "A", ExportTargets: []string{"json"}}}, nil, Options{})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Orders", SheetName("Orders", used))
	assert.Equal(t, "orders (2)", SheetName("orders", used))
	assert.Equal(t, "a_b_c_d_e_f_g", SheetName("a:b\\c/d?e*f[g", used)[:13])
	assert.Equal(t, "Sheet", SheetName("  ", used))

	long := strings.Repeat("x", 40)
	got := SheetName(long, used)
	assert.Equal(t, strings.Repeat("x", 31), got)
	got = SheetName(long, used)
	assert.Equal(t, strings.Repeat("x", 27)+" (2)", got)
}
