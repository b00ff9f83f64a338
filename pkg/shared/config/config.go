package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the tool-wide YAML configuration. Every directive is optional.
type Config struct {
	Sqllmcg    Sqllmcg    `yaml:"sqllmcg"`
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
}

// Sqllmcg holds locations used by the tool itself.
type Sqllmcg struct {
	HomeFolder   string `yaml:"home_folder"`
	SettingsFile string `yaml:"settings_file"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// HTTPClient configures the clients talking to SonarQube and Ollama.
// There is no retry directive: every call is a single attempt.
type HTTPClient struct {
	Debug            *bool           `yaml:"debug"`
	Timeout          time.Duration   `yaml:"timeout"`
	InferenceTimeout time.Duration   `yaml:"inference_timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ValidateConfigPath checks that path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the tool configuration. A missing file at the default
// location yields an empty configuration; an explicitly requested file must exist.
func LoadConfig(configPath string, required bool) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) && !required {
		return cfg, nil
	}

	if err := LoadYAML(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return cfg, nil
}
