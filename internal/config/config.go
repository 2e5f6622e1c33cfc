// Package config loads waiwaier settings: defaults, then a YAML or JSON file,
// then WAIWAIER_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultFile    = "waiwaier.yaml"
	envPrefix      = "WAIWAIER_"
)

var ErrUnsupportedVersion = errors.New("config: unsupported version")

type Config struct {
	Version int    `json:"version" yaml:"version"`
	Port    string `json:"port" yaml:"port"`

	// Schema is a project file or a directory of table files.
	Schema   string `json:"schema" yaml:"schema"`
	Settings string `json:"settings" yaml:"settings"`
	Samples  string `json:"samples" yaml:"samples"`

	// Project store: sqlite files under DataDir unless DBURL is set.
	DataDir    string `json:"dataDir" yaml:"dataDir"`
	DBURL      string `json:"dbUrl" yaml:"dbUrl"`
	Passphrase string `json:"passphrase" yaml:"passphrase"`

	ExportsDir    string `json:"exportsDir" yaml:"exportsDir"`
	IncludeData   bool   `json:"includeData" yaml:"includeData"`
	MaxSampleRows int    `json:"maxSampleRows" yaml:"maxSampleRows"`
}

func Default() Config {
	return Config{
		Version:       CurrentVersion,
		Port:          "8080",
		Schema:        "schema",
		Settings:      "",
		Samples:       "",
		DataDir:       "data",
		DBURL:         "",
		ExportsDir:    "exports",
		IncludeData:   false,
		MaxSampleRows: 5,
	}
}

// loadFile layers the file over c. JSON is read by the YAML decoder.
func loadFile(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(envPrefix + k); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(envPrefix + k); ok {
		if b, ok := parseBool(v); ok {
			return b
		}
	}
	return fallback
}

func getenvInt(k string, fallback int) int {
	if v, ok := os.LookupEnv(envPrefix + k); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

// Load reads path (or DefaultFile when path is empty and the file exists)
// and applies environment overrides. An explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	} else if st, err := os.Stat(DefaultFile); err == nil && !st.IsDir() {
		if err := loadFile(DefaultFile, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.Schema = getenv("SCHEMA", cfg.Schema)
	cfg.Settings = getenv("SETTINGS", cfg.Settings)
	cfg.Samples = getenv("SAMPLES", cfg.Samples)
	cfg.DataDir = getenv("DATA_DIR", cfg.DataDir)
	cfg.DBURL = getenv("DB_URL", cfg.DBURL)
	cfg.Passphrase = getenv("PASSPHRASE", cfg.Passphrase)
	cfg.ExportsDir = getenv("EXPORTS_DIR", cfg.ExportsDir)
	cfg.IncludeData = getenvBool("INCLUDE_DATA", cfg.IncludeData)
	cfg.MaxSampleRows = getenvInt("MAX_SAMPLE_ROWS", cfg.MaxSampleRows)

	return cfg, nil
}

// RegisterFlags declares the override flags on fs. Only flags the user
// actually sets are applied by ApplyFlags.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "Path to config file (YAML or JSON)")
	fs.String("port", d.Port, "HTTP port")
	fs.String("schema", d.Schema, "Project file or directory of table files")
	fs.String("settings", d.Settings, "Note parameter settings file")
	fs.String("samples", d.Samples, "Sample rows file or directory")
	fs.String("data-dir", d.DataDir, "Project store directory (sqlite)")
	fs.String("db", d.DBURL, "Postgres URL for the project store (empty = sqlite)")
	fs.String("passphrase", "", "Encrypt project store values with this passphrase")
	fs.String("exports-dir", d.ExportsDir, "Where the server keeps exported workbooks")
	fs.Bool("include-data", d.IncludeData, "Write sample rows below the header")
	fs.Int("max-sample-rows", d.MaxSampleRows, "Sample rows per sheet (0 = all)")
}

func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	str := func(name string, dst *string) error {
		if !fs.Changed(name) {
			return nil
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(v)
		return nil
	}
	for name, dst := range map[string]*string{
		"port":        &cfg.Port,
		"schema":      &cfg.Schema,
		"settings":    &cfg.Settings,
		"samples":     &cfg.Samples,
		"data-dir":    &cfg.DataDir,
		"db":          &cfg.DBURL,
		"passphrase":  &cfg.Passphrase,
		"exports-dir": &cfg.ExportsDir,
	} {
		if err := str(name, dst); err != nil {
			return err
		}
	}
	if fs.Changed("include-data") {
		v, err := fs.GetBool("include-data")
		if err != nil {
			return err
		}
		cfg.IncludeData = v
	}
	if fs.Changed("max-sample-rows") {
		v, err := fs.GetInt("max-sample-rows")
		if err != nil {
			return err
		}
		cfg.MaxSampleRows = v
	}
	return nil
}

func (c Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: %d (want %d)", ErrUnsupportedVersion, c.Version, CurrentVersion)
	}
	if c.MaxSampleRows < 0 {
		return fmt.Errorf("config: maxSampleRows must be >= 0, got %d", c.MaxSampleRows)
	}
	if c.DBURL != "" && !strings.HasPrefix(c.DBURL, "postgres://") && !strings.HasPrefix(c.DBURL, "postgresql://") {
		return fmt.Errorf("config: dbUrl must be a postgres:// URL")
	}
	if c.DBURL == "" && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: dataDir is required without dbUrl")
	}
	return nil
}
