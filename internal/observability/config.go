package observability

import (
	"strings"

	"github.com/codecircle/recruit/internal/config"
)

// Config carries the observability settings derived from app config.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	LogLevel    string
	LogFormat   string

	OtelEnabled          bool
	OtelExporterEndpoint string
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:          cfg.AppName,
		Environment:          cfg.Environment,
		Version:              cfg.AppVersion,
		LogLevel:             cfg.LogLevel,
		LogFormat:            cfg.LogFormat,
		OtelEnabled:          cfg.OtelEnabled,
		OtelExporterEndpoint: cfg.OtelExporterEndpoint,
	}
}

func (c Config) Debug() bool {
	return strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug")
}
