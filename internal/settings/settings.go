// Package settings resolves the run settings once per process: CLI overrides win over the
// persisted record, which wins over built-in defaults. The merged record is written back so
// later runs inherit it.
package settings

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	DefaultSonarHost = "http://localhost:9000"
	DefaultOllamaURL = "http://localhost:11434"
	DefaultModel     = "deepseek-r1:14b"
)

// Settings is the resolved configuration of one run. It is produced by Resolve and passed by
// value; nothing mutates it afterwards.
type Settings struct {
	SonarHost          string
	OllamaURL          string
	Token              string
	Model              string
	FalsePositiveRules []string
}

// Record is the persisted form of Settings.
type Record struct {
	SonarHost          string   `yaml:"sonar_host"`
	OllamaURL          string   `yaml:"ollama_url"`
	Model              string   `yaml:"model"`
	Token              string   `yaml:"token"`
	FalsePositiveRules []string `yaml:"false_positive_rules,omitempty"`
}

// Overrides are values supplied on the command line. A nil pointer or an empty slice means
// "not supplied".
type Overrides struct {
	SonarHost          *string
	OllamaURL          *string
	Token              *string
	Model              *string
	FalsePositiveRules []string
}

// DefaultRecord returns the built-in defaults written on first run.
func DefaultRecord() Record {
	return Record{
		SonarHost: DefaultSonarHost,
		OllamaURL: DefaultOllamaURL,
		Model:     DefaultModel,
	}
}

// Merge applies overrides on top of the persisted record and fills remaining gaps with defaults.
func Merge(persisted Record, o Overrides) Record {
	def := DefaultRecord()
	merged := Record{
		SonarHost:          pick(o.SonarHost, persisted.SonarHost, def.SonarHost),
		OllamaURL:          pick(o.OllamaURL, persisted.OllamaURL, def.OllamaURL),
		Model:              pick(o.Model, persisted.Model, def.Model),
		Token:              pick(o.Token, persisted.Token, def.Token),
		FalsePositiveRules: persisted.FalsePositiveRules,
	}
	if len(o.FalsePositiveRules) > 0 {
		merged.FalsePositiveRules = o.FalsePositiveRules
	}
	merged.FalsePositiveRules = normalizeRules(merged.FalsePositiveRules)
	return merged
}

func pick(override *string, persisted, def string) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return strings.TrimSpace(*override)
	}
	if persisted != "" {
		return persisted
	}
	return def
}

// normalizeRules trims, de-duplicates and sorts rule ids so prompts render deterministically.
func normalizeRules(rules []string) []string {
	seen := make(map[string]struct{}, len(rules))
	var out []string
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Settings converts the record into the value handed to the pipeline.
func (r Record) Settings() Settings {
	rules := make([]string, len(r.FalsePositiveRules))
	copy(rules, r.FalsePositiveRules)
	return Settings{
		SonarHost:          strings.TrimRight(r.SonarHost, "/"),
		OllamaURL:          strings.TrimRight(r.OllamaURL, "/"),
		Token:              r.Token,
		Model:              r.Model,
		FalsePositiveRules: rules,
	}
}

// Validate checks that the settings are usable for a run.
func (s Settings) Validate() error {
	if err := validateURL("sonar host", s.SonarHost); err != nil {
		return err
	}
	if err := validateURL("ollama url", s.OllamaURL); err != nil {
		return err
	}
	if s.Token == "" {
		return fmt.Errorf("sonar token is empty: pass --token once, it is persisted afterwards")
	}
	if s.Model == "" {
		return fmt.Errorf("model is empty")
	}
	return nil
}

// IsAlwaysFalsePositive reports whether rule was declared a guaranteed false positive.
func (s Settings) IsAlwaysFalsePositive(rule string) bool {
	i := sort.SearchStrings(s.FalsePositiveRules, rule)
	return i < len(s.FalsePositiveRules) && s.FalsePositiveRules[i] == rule
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: host is empty", name, raw)
	}
	return nil
}
