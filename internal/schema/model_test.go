package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		finite float64
	}{
		{"number", `2.5`, 2.5},
		{"numeric string", `" 7 "`, 7},
		{"text", `"abc"`, 0},
		{"bool", `true`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Numeric
			require.NoError(t, json.Unmarshal([]byte(tt.json), &n))
			assert.Equal(t, tt.finite, n.Finite())
		})
	}

	assert.Equal(t, 0.0, Numeric(math.Inf(-1)).Finite())
	b, err := json.Marshal(NewNumeric(1e21))
	require.NoError(t, err)
	assert.Equal(t, "1e+21", string(b))
}

func TestRefKeyColumn(t *testing.T) {
	tbl := Table{Columns: []Column{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", IsKey: true},
		{ID: "c", Name: "C"},
	}}
	tests := []struct {
		name     string
		table    Table
		columnID string
		want     string
	}{
		{"explicit", tbl, "c", "c"},
		{"missing falls back to key", tbl, "zz", "b"},
		{"empty falls back to key", tbl, "", "b"},
		{"no key falls back to first", Table{Columns: []Column{{ID: "x"}, {ID: "y"}}}, "", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := tt.table.RefKeyColumn(tt.columnID)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.ID)
		})
	}

	_, ok := (&Table{}).RefKeyColumn("")
	assert.False(t, ok)
}

func TestForExport(t *testing.T) {
	tables := []Table{
		{ID: "all"},
		{ID: "excel", ExportTargets: []string{"Excel"}},
		{ID: "json", ExportTargets: []string{"json"}},
		{ID: "none", ExportTargets: []string{}},
	}
	var ids []string
	for _, tbl := range ForExport(tables, TargetExcel) {
		ids = append(ids, tbl.ID)
	}
	assert.Equal(t, []string{"all", "excel"}, ids)
}

func TestTableByName(t *testing.T) {
	tables := []Table{
		{ID: "t1", Name: "Users"},
		{ID: "t2", Name: "Dup"},
		{ID: "t3", Name: "dup"},
	}
	got, ok := TableByName(tables, " users ")
	require.True(t, ok)
	assert.Equal(t, "t1", got.ID)

	got, ok = TableByName(tables, "t3")
	require.True(t, ok)
	assert.Equal(t, "t3", got.ID)

	_, ok = TableByName(tables, "DUP")
	assert.False(t, ok)
	_, ok = TableByName(tables, "")
	assert.False(t, ok)
}

func TestSlugID(t *testing.T) {
	assert.Equal(t, "order_lines", slugID(" Order  Lines "))
	assert.Equal(t, "a_b_c", slugID("a-b.c"))
	assert.Equal(t, "顧客", slugID("顧客"))
	assert.Equal(t, "", slugID(" - "))
}
