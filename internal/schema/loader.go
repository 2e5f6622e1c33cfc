package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported schema format")

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".dsl", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads one project document. .yaml/.yml/.json hold {name, tables,
// settings}; .dsl holds tables only.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p Project
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dsl":
		tables, err := ParseDSL(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		p.Tables = tables
	case ".json":
		if err := json.NewDecoder(f).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(f).Decode(&p); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	Normalize(p.Tables)
	return &p, nil
}

// LoadDir loads every schema file under root (walk order) into one project.
// References may cross files. Settings may be declared by at most one file.
func LoadDir(root string) (*Project, error) {
	out := &Project{Name: filepath.Base(root)}
	seen := map[string]string{}
	settingsFrom := ""

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isSchemaFile(d.Name()) {
			return nil
		}

		p, err := Load(path)
		if err != nil {
			return err
		}
		for _, t := range p.Tables {
			if prev, exists := seen[t.ID]; exists {
				return fmt.Errorf("duplicate table %q (files: %s, %s)", t.ID, prev, path)
			}
			seen[t.ID] = path
			out.Tables = append(out.Tables, t)
		}
		if p.Settings != nil {
			if settingsFrom != "" {
				return fmt.Errorf("settings declared in both %s and %s", settingsFrom, path)
			}
			settingsFrom = path
			out.Settings = p.Settings
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resolveRefs(out.Tables)
	return out, nil
}

// LoadPath dispatches to Load or LoadDir.
func LoadPath(path string) (*Project, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return Load(path)
}

// LoadSettings reads a settings file (key: bool). A missing file yields nil
// settings, i.e. "never saved".
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Settings
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if s == nil {
		s = Settings{}
	}
	return s, nil
}

func SaveSettings(path string, s Settings) error {
	if s == nil {
		s = Settings{}
	}
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Normalize fills missing ids and types and resolves name-based references.
// It is meant for hand-written files; see AssignIDs for documents whose
// references are already ids.
func Normalize(tables []Table) {
	AssignIDs(tables)
	resolveRefs(tables)
}

// AssignIDs derives missing table and column ids from names and defaults an
// empty column type to Text. References are left as given.
func AssignIDs(tables []Table) {
	taken := map[string]bool{}
	for _, t := range tables {
		if t.ID != "" {
			taken[t.ID] = true
		}
	}
	for i := range tables {
		t := &tables[i]
		if t.ID == "" {
			t.ID = uniqueID(slugID(t.Name), "table", taken)
		}

		cols := map[string]bool{}
		for _, c := range t.Columns {
			if c.ID != "" {
				cols[c.ID] = true
			}
		}
		for j := range t.Columns {
			c := &t.Columns[j]
			if c.ID == "" {
				c.ID = uniqueID(t.ID+"."+slugID(c.Name), t.ID+".column", cols)
			}
			if c.Type == "" {
				c.Type = TypeText
			}
		}
	}
}

func uniqueID(base, fallback string, taken map[string]bool) string {
	if base == "" || strings.HasSuffix(base, ".") {
		base = fallback
	}
	id := base
	for n := 2; taken[id]; n++ {
		id = base + "_" + strconv.Itoa(n)
	}
	taken[id] = true
	return id
}

// resolveRefs rewrites Ref targets given by name into ids. Targets that do
// not resolve are left as written; lint reports them.
func resolveRefs(tables []Table) {
	for i := range tables {
		for j := range tables[i].Columns {
			cons := &tables[i].Columns[j].Constraints
			if cons.RefTableID == "" {
				continue
			}
			ref, ok := TableByName(tables, cons.RefTableID)
			if !ok {
				continue
			}
			cons.RefTableID = ref.ID
			if cons.RefColumnID == "" {
				continue
			}
			if c, ok := ref.ColumnByName(cons.RefColumnID); ok {
				cons.RefColumnID = c.ID
			}
		}
	}
}
