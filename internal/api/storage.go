package api

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"waiwaier/internal/sample"
	"waiwaier/internal/schema"
	"waiwaier/internal/store"
)

// Sources names the files the workspace is loaded from. Empty paths are
// skipped.
type Sources struct {
	Schema   string `json:"schema"`
	Settings string `json:"settings"`
	Samples  string `json:"samples"`
}

// Workspace is the project the server exports by default, plus the stores
// the handlers write to.
type Workspace struct {
	mu       sync.RWMutex
	project  *schema.Project
	settings schema.Settings
	samples  sample.Set
	sources  Sources

	Blob BlobStore
	KV   store.KV

	IncludeData   bool
	MaxSampleRows int

	idMu    sync.Mutex
	entropy io.Reader
}

func NewWorkspace(p *schema.Project, settings schema.Settings, samples sample.Set) *Workspace {
	if p == nil {
		p = &schema.Project{}
	}
	if settings == nil {
		settings = p.Settings
	}
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Workspace{
		project:  p,
		settings: settings,
		samples:  samples,
		entropy:  ulid.Monotonic(src, 0),
	}
}

// LoadWorkspace reads src into a new workspace.
func LoadWorkspace(src Sources) (*Workspace, error) {
	w := NewWorkspace(nil, nil, nil)
	if err := w.Reload(src); err != nil {
		return nil, err
	}
	return w, nil
}

// Reload re-reads every source and swaps the result in at once. A settings
// file, when given and present, wins over settings inside the project.
func (w *Workspace) Reload(src Sources) error {
	p := &schema.Project{}
	if src.Schema != "" {
		loaded, err := schema.LoadPath(src.Schema)
		if err != nil {
			return fmt.Errorf("load schema: %w", err)
		}
		p = loaded
	}
	settings := p.Settings
	if src.Settings != "" {
		s, err := schema.LoadSettings(src.Settings)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if s != nil {
			settings = s
		}
	}
	var samples sample.Set
	if src.Samples != "" {
		s, err := sample.Load(src.Samples)
		if err != nil {
			return fmt.Errorf("load samples: %w", err)
		}
		samples = s
	}

	w.mu.Lock()
	w.project = p
	w.settings = settings
	w.samples = samples
	w.sources = src
	w.mu.Unlock()
	return nil
}

func (w *Workspace) Sources() Sources {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sources
}

// Snapshot returns the current tables, settings and samples. Callers must
// not modify them.
func (w *Workspace) Snapshot() ([]schema.Table, schema.Settings, sample.Set) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.project.Tables, w.settings, w.samples
}

func (w *Workspace) ProjectName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.project.Name
}

func (w *Workspace) newID() string {
	w.idMu.Lock()
	defer w.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), w.entropy).String()
}
