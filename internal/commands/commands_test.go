package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waiwaier/internal/schema"
)

const shopDSL = `table Users:
  > People who order
  Email: Email key required
  Name: Text label
table Orders:
  ID: Number key
  Owner: Ref[Users]
  Note: Text note.Show_If="[ID] > 1"
`

func writeSchema(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.dsl")
	require.NoError(t, os.WriteFile(path, []byte(shopDSL), 0o644))
	return dir, path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreviewCmd(t *testing.T) {
	_, path := writeSchema(t)

	out, err := run(t, "preview", "--schema", path, "--json")
	require.NoError(t, err)
	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, `AppSheet:{"Type":"Email","IsKey":true}`, got["users"]["users.email"])
	assert.Equal(t, `AppSheet:{"Type":"Ref"}`, got["orders"]["orders.owner"])
	assert.Equal(t, `AppSheet:{"Type":"Text","TypeAuxData":"{\"Show_If\":\"[ID] > 1\"}"}`, got["orders"]["orders.note"])

	out, err = run(t, "preview", "orders", "--schema", path, "--json")
	require.NoError(t, err)
	got = nil
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 1)

	out, err = run(t, "preview", "Users", "--schema", path)
	require.NoError(t, err)
	assert.Contains(t, out, `AppSheet:{"Type":"Email","IsKey":true}`)

	_, err = run(t, "preview", "Nope", "--schema", path)
	assert.Error(t, err)
}

func TestLintCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dsl")
	require.NoError(t, os.WriteFile(path, []byte("table A:\n  R: Ref[Missing]\n"), 0o644))

	out, err := run(t, "lint", "--schema", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ref_table_missing")

	_, err = run(t, "lint", "--schema", path, "--strict")
	assert.Error(t, err)

	_, good := writeSchema(t)
	out, err = run(t, "lint", "--schema", good, "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "No issues found")
}

func TestDDLCmd(t *testing.T) {
	dir, path := writeSchema(t)

	out, err := run(t, "ddl", "--schema", path, "--dialect", "sqlite", "--no-comments")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `CREATE TABLE "Users" (`), out)
	assert.Contains(t, out, `REFERENCES "Users"("Email")`)

	file := filepath.Join(dir, "schema.sql")
	_, err = run(t, "ddl", "--schema", path, "-o", file)
	require.NoError(t, err)
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "-- Dialect: generic")

	_, err = run(t, "ddl", "--schema", path, "--dialect", "oracle")
	assert.Error(t, err)

	_, err = run(t, "ddl", "--schema", path, "--apply")
	assert.ErrorContains(t, err, "postgresql")
	_, err = run(t, "ddl", "--schema", path, "--apply", "--dialect", "postgresql")
	assert.ErrorContains(t, err, "--db")
}

func TestRegistryCmd(t *testing.T) {
	out, err := run(t, "registry", "--status", "verified")
	require.NoError(t, err)
	assert.Contains(t, out, "Type")
	assert.Contains(t, out, "IsKey")
	assert.NotContains(t, out, "IsLabel")

	out, err = run(t, "registry", "--category", "ref")
	require.NoError(t, err)
	assert.Contains(t, out, "ReferencedTableName")
	assert.NotContains(t, out, "EnumValues")

	_, err = run(t, "registry", "--status", "maybe")
	assert.Error(t, err)
}

func TestSettingsCmds(t *testing.T) {
	dir, schemaPath := writeSchema(t)
	settingsPath := filepath.Join(dir, "settings.yaml")

	out, err := run(t, "settings", "show", "--settings", settingsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no saved settings")

	_, err = run(t, "settings", "edit", "--settings", settingsPath, "--enable", "IsLabel", "--disable", "IsKey")
	require.NoError(t, err)
	s, err := schema.LoadSettings(settingsPath)
	require.NoError(t, err)
	assert.True(t, s["Type"])
	assert.True(t, s["IsLabel"])
	assert.False(t, s["IsKey"])
	assert.False(t, s["Description"])

	out, err = run(t, "preview", "users", "--schema", schemaPath, "--settings", settingsPath, "--json")
	require.NoError(t, err)
	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, `AppSheet:{"Type":"Email"}`, got["users"]["users.email"])
	assert.Equal(t, `AppSheet:{"Type":"Text","IsLabel":true}`, got["users"]["users.name"])

	_, err = run(t, "settings", "reset", "--settings", settingsPath)
	require.NoError(t, err)
	s, err = schema.LoadSettings(settingsPath)
	require.NoError(t, err)
	assert.True(t, s["IsKey"])
	assert.False(t, s["IsLabel"])

	_, err = run(t, "settings", "show")
	assert.Error(t, err)
}

func TestSettingsFromSelection(t *testing.T) {
	s := settingsFromSelection([]string{"Type", "Show_If"})
	assert.True(t, s["Type"])
	assert.True(t, s["Show_If"])
	assert.False(t, s["IsKey"])
	_, listed := s["EnumValues"]
	assert.True(t, listed)
}

func TestKVCmds(t *testing.T) {
	dataDir := t.TempDir()
	const project = "6f1c2d3e-4b5a-4c6d-8e7f-0a1b2c3d4e5f"

	_, err := run(t, "kv", "set", project, "diagram", `{"tables":[]}`, "--data-dir", dataDir, "--passphrase", "Correct-Horse-42")
	require.NoError(t, err)

	out, err := run(t, "kv", "get", project, "diagram", "--data-dir", dataDir, "--passphrase", "Correct-Horse-42")
	require.NoError(t, err)
	assert.Equal(t, "{\"tables\":[]}\n", out)

	out, err = run(t, "kv", "get", project, "diagram", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, `"encrypted"`)

	_, err = run(t, "kv", "get", project, "diagram", "--data-dir", dataDir, "--passphrase", "wrong")
	assert.Error(t, err)

	_, err = run(t, "kv", "delete", project, "diagram", "--data-dir", dataDir)
	require.NoError(t, err)
	_, err = run(t, "kv", "get", project, "diagram", "--data-dir", dataDir)
	assert.Error(t, err)

	_, err = run(t, "kv", "drop", project, "--data-dir", dataDir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dataDir, "projects", project+".db"))
	assert.True(t, os.IsNotExist(err))

	_, err = run(t, "kv", "get", "not-a-uuid", "k", "--data-dir", dataDir)
	assert.Error(t, err)
}

func TestExportCmd(t *testing.T) {
	dir, path := writeSchema(t)
	out := filepath.Join(dir, "shop.xlsx")
	stdout, err := run(t, "export", "--schema", path, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Export completed")
	assert.Regexp(t, `Sheets:\S*\s+2`, stdout)
	assert.Regexp(t, `Notes:\S*\s+5`, stdout)
	assert.Contains(t, stdout, out)
	_, err = os.Stat(out)
	require.NoError(t, err)
}
