package prompts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"waiwaier/internal/notes"
)

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, []ResultField{
		{Label: "File", Value: "out.xlsx"},
		{Label: "Sheets", Value: "2"},
	}, "Export completed")

	out := buf.String()
	assert.Contains(t, out, "File:")
	assert.Contains(t, out, "out.xlsx")
	assert.Contains(t, out, "Sheets:")
	assert.Contains(t, out, "Export completed")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("out.xlsx")), bytes.Index(buf.Bytes(), []byte("Sheets:")))
}

func TestPrintResult_NoMessage(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, nil, "")
	assert.Equal(t, "\n", buf.String())
}

func TestStatusBadge(t *testing.T) {
	for _, s := range []notes.Status{notes.Verified, notes.Unstable, notes.Unsupported, notes.Untested} {
		assert.Contains(t, StatusBadge(s), s.String())
	}
}
