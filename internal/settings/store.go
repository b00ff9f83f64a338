package settings

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	yaml "gopkg.in/yaml.v2"

	"github.com/CHXSER/sqllmcg/pkg/shared/files"
)

// Store persists the settings record as a YAML file.
type Store struct {
	Path   string
	Logger hclog.Logger
}

// NewStore returns a store backed by the file at path.
func NewStore(path string, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{Path: path, Logger: logger}
}

// Load reads the persisted record. When the file does not exist it is created with the
// built-in defaults.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		s.Logger.Info("settings file not found, creating it with defaults", "path", s.Path)
		rec := DefaultRecord()
		if err := s.Save(rec); err != nil {
			return Record{}, err
		}
		return rec, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read settings file %q: %w", s.Path, err)
	}

	var rec Record
	if err := yaml.UnmarshalStrict(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse settings file %q: %w", s.Path, err)
	}
	return rec, nil
}

// Save writes the record, replacing the previous file atomically.
func (s *Store) Save(rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	if err := files.WriteFileAtomic(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file %q: %w", s.Path, err)
	}
	return nil
}

// Resolve loads the persisted record, merges the overrides and writes the result back.
// Any read, parse or write failure is returned; callers must not run with partial settings.
func Resolve(store *Store, o Overrides) (Settings, error) {
	persisted, err := store.Load()
	if err != nil {
		return Settings{}, err
	}

	merged := Merge(persisted, o)
	if err := store.Save(merged); err != nil {
		return Settings{}, err
	}
	store.Logger.Debug("settings resolved",
		"sonar_host", merged.SonarHost,
		"ollama_url", merged.OllamaURL,
		"model", merged.Model,
		"false_positive_rules", len(merged.FalsePositiveRules),
	)

	return merged.Settings(), nil
}
