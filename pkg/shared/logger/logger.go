package logger

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/CHXSER/sqllmcg/pkg/shared/config"
)

// NewLogger creates a new hclog.Logger instance based on the YAML configuration and the provided name.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	var loggerCfg *config.Logger
	if cfg != nil {
		loggerCfg = &cfg.Logger
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		DisableTime:     config.GetBoolValue(loggerCfg, "DisableTime", true),
		JSONFormat:      config.GetBoolValue(loggerCfg, "JSONFormat", false),
		IncludeLocation: config.GetBoolValue(loggerCfg, "IncludeLocation", false),
		Output:          os.Stdout,
		Level:           determineLogLevel(loggerCfg),
	})
}

// determineLogLevel returns a log level determined first by an environment variable, and if not set, by the provided configuration.
// If neither configuration nor environment variable specifies a log level, it defaults to INFO.
func determineLogLevel(cfg *config.Logger) hclog.Level {
	if logLevelEnv := os.Getenv("SQLLMCG_LOG_LEVEL"); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	if cfg == nil || cfg.Level == "" {
		return hclog.Info
	}
	return parseLogLevel(strings.ToUpper(cfg.Level))
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      os.Stdout,
		}).Warn("Unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
