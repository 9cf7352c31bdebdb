package appconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"leadscore/internal/jurisdiction"
	"leadscore/internal/leadscoring"
)

// Config is the yaml configuration surface shared by all binaries.
// Every field has a working default; a missing file means defaults.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	SQLitePath string `yaml:"sqlite_path"`

	Weaviate struct {
		Scheme    string `yaml:"scheme"`
		Host      string `yaml:"host"`
		ClassName string `yaml:"class_name"`
	} `yaml:"weaviate"`

	CaseFilesDir  string `yaml:"case_files_dir"`
	TranscriptDir string `yaml:"transcript_dir"`

	Scoring      leadscoring.SessionConfig `yaml:"scoring"`
	Jurisdiction jurisdiction.Config       `yaml:"jurisdiction"`
}

func Default() Config {
	cfg := Config{
		ListenAddr:   ":8080",
		SQLitePath:   "leadscore.db",
		CaseFilesDir: "cases",
		Scoring:      leadscoring.DefaultSessionConfig(),
		Jurisdiction: jurisdiction.DefaultConfig(),
	}
	cfg.Weaviate.Scheme = "http"
	cfg.Weaviate.Host = "localhost:8090"
	cfg.Weaviate.ClassName = "HistoricalCase"
	return cfg
}

// Load reads a yaml config file over the defaults. An empty path
// returns the defaults unchanged; a named file must exist and parse.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(blob, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Jurisdiction.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
