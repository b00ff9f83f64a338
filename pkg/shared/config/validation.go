package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CHXSER/sqllmcg/pkg/shared/files"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateSqllmcgConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: sqllmcg directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

// ValidateSqllmcgConfig resolves the home folder and the settings file location.
func ValidateSqllmcgConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("sqllmcg configuration is nil")
	}
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if envValue := os.Getenv("SQLLMCG_SETTINGS_FILE"); envValue != "" {
		cfg.Sqllmcg.SettingsFile = envValue
	}
	if cfg.Sqllmcg.SettingsFile != "" {
		expanded, err := files.ExpandPath(cfg.Sqllmcg.SettingsFile)
		if err != nil {
			return fmt.Errorf("failed to expand settings file path %q: %w", cfg.Sqllmcg.SettingsFile, err)
		}
		cfg.Sqllmcg.SettingsFile = expanded
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}

	if err := validateDuration(httpConfig.Timeout, "timeout", 10*time.Minute); err != nil {
		return err
	}
	if err := validateDuration(httpConfig.InferenceTimeout, "inference_timeout", 2*time.Hour); err != nil {
		return err
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	return validatePort(proxy.Port)
}

// validateHost ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// updateHome sets the home folder from SQLLMCG_HOME, the config, or ~/.sqllmcg, and creates it.
func updateHome(cfg *Config) error {
	if homeFolder := os.Getenv("SQLLMCG_HOME"); homeFolder != "" {
		cfg.Sqllmcg.HomeFolder = homeFolder
	} else if cfg.Sqllmcg.HomeFolder == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to get user home folder: %w", err)
		}
		cfg.Sqllmcg.HomeFolder = filepath.Join(userHome, ".sqllmcg")
	}

	expandedHomePath, err := files.ExpandPath(cfg.Sqllmcg.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand home path %q: %w", cfg.Sqllmcg.HomeFolder, err)
	}
	cfg.Sqllmcg.HomeFolder = expandedHomePath

	if err := files.CreateFolderIfNotExists(expandedHomePath); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", expandedHomePath, err)
	}
	return nil
}
