// Package config resolves server settings from defaults, an optional YAML
// file, and PRIMED_* environment overrides, in that order.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Backlog int    `yaml:"backlog"`
	Workers int    `yaml:"workers"`

	MetricsAddr string `yaml:"metricsAddr"`

	RateLimitRPS   float64 `yaml:"rateLimitRps"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

type file struct {
	Server Server `yaml:"server"`
}

func Default() Server {
	return Server{
		Host:      "127.0.0.1",
		Port:      9090,
		Backlog:   8,
		Workers:   4,
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadFromPath resolves the effective configuration. When configPath is
// empty the conventional locations are probed; a missing or unreadable file
// falls through to defaults plus env overrides.
func LoadFromPath(configPath string) Server {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/primed.yaml",
			"primed.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed file
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		Merge(&cfg, parsed.Server)
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

// Merge overlays non-zero fields from src onto dst.
func Merge(dst *Server, src Server) {
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.Backlog != 0 {
		dst.Backlog = src.Backlog
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.MetricsAddr != "" {
		dst.MetricsAddr = src.MetricsAddr
	}
	if src.RateLimitRPS != 0 {
		dst.RateLimitRPS = src.RateLimitRPS
	}
	if src.RateLimitBurst != 0 {
		dst.RateLimitBurst = src.RateLimitBurst
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
}

func ApplyEnvOverrides(cfg *Server) {
	if host := strings.TrimSpace(os.Getenv("PRIMED_HOST")); host != "" {
		cfg.Host = host
	}
	if raw := strings.TrimSpace(os.Getenv("PRIMED_PORT")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.Port = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("PRIMED_WORKERS")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.Workers = v
		}
	}
	if addr := strings.TrimSpace(os.Getenv("PRIMED_METRICS_ADDR")); addr != "" {
		cfg.MetricsAddr = addr
	}
	if raw := strings.TrimSpace(os.Getenv("PRIMED_RATE_LIMIT_RPS")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			cfg.RateLimitRPS = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("PRIMED_RATE_LIMIT_BURST")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.RateLimitBurst = v
		}
	}
	if level := strings.TrimSpace(os.Getenv("PRIMED_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.TrimSpace(os.Getenv("PRIMED_LOG_FORMAT")); format != "" {
		cfg.LogFormat = format
	}
}

// Addr is the listen address in host:port form.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
