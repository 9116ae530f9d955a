// Package config loads SDK configuration from YAML files and
// environment variables.
//
// Resolution order: built-in defaults, then the first config file
// found (explicit path or one of DefaultPaths), then SIYI_*
// environment variables. Later sources win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPaths are searched in order when no explicit path is given.
var DefaultPaths = []string{
	"siyi_config.yaml",
	"~/.siyi_sdk/config.yaml",
	"/etc/siyi_sdk/config.yaml",
}

// Camera configures the connection to the device.
type Camera struct {
	// Host is the camera IP address.
	Host string `yaml:"host"`

	// Port is the camera control port.
	Port int `yaml:"port"`

	// Timeout is the per-request deadline.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of resends after the first attempt
	// times out.
	MaxRetries int `yaml:"max_retries"`

	// RetryInterval is the pause before each resend.
	RetryInterval time.Duration `yaml:"retry_interval"`

	// RetryPolicy is "fixed" or "exponential" resend pacing.
	RetryPolicy string `yaml:"retry_policy"`

	// HeartbeatInterval is the liveness probe period. Zero disables
	// the heartbeat.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// AttitudeInterval is the attitude poll period. Zero disables
	// the poller.
	AttitudeInterval time.Duration `yaml:"attitude_interval"`

	// InfoInterval is the gimbal info poll period. Zero disables
	// the poller.
	InfoInterval time.Duration `yaml:"info_interval"`
}

// Addr returns the host:port device address.
func (c Camera) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Logging configures operational log output.
type Logging struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`

	// CaptureFile enables binary protocol capture when non-empty.
	CaptureFile string `yaml:"capture_file"`
}

// Config is the root SDK configuration.
type Config struct {
	Camera  Camera  `yaml:"camera"`
	Logging Logging `yaml:"logging"`

	// ProfileFile points to a YAML camera profile override file.
	ProfileFile string `yaml:"profile_file"`
}

// Default returns the factory configuration.
func Default() Config {
	return Config{
		Camera: Camera{
			Host:              "192.168.144.25",
			Port:              37260,
			Timeout:           5 * time.Second,
			MaxRetries:        3,
			RetryInterval:     100 * time.Millisecond,
			RetryPolicy:       "fixed",
			HeartbeatInterval: time.Second,
			AttitudeInterval:  20 * time.Millisecond,
			InfoInterval:      time.Second,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load resolves the configuration. An empty path searches
// DefaultPaths; a missing default file is not an error, a missing
// explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	} else {
		for _, candidate := range DefaultPaths {
			expanded := expandHome(candidate)
			if _, err := os.Stat(expanded); err != nil {
				continue
			}
			if err := mergeFile(&cfg, expanded); err != nil {
				return Config{}, err
			}
			break
		}
	}

	mergeEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeEnv applies SIYI_* environment overrides.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("SIYI_CAMERA_IP"); v != "" {
		cfg.Camera.Host = v
	}
	if v := os.Getenv("SIYI_CAMERA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Camera.Port = port
		}
	}
	if v := os.Getenv("SIYI_CAMERA_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Camera.Timeout = d
		}
	}
	if v := os.Getenv("SIYI_CAMERA_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Camera.MaxRetries = n
		}
	}
	if v := os.Getenv("SIYI_CAMERA_RETRY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Camera.RetryInterval = d
		}
	}
	if v := os.Getenv("SIYI_CAMERA_RETRY_POLICY"); v != "" {
		cfg.Camera.RetryPolicy = v
	}
	if v := os.Getenv("SIYI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SIYI_CAPTURE_FILE"); v != "" {
		cfg.Logging.CaptureFile = v
	}
	if v := os.Getenv("SIYI_PROFILE_FILE"); v != "" {
		cfg.ProfileFile = v
	}
}

func (c Config) validate() error {
	if c.Camera.Host == "" {
		return fmt.Errorf("camera host must not be empty")
	}
	if c.Camera.Port <= 0 || c.Camera.Port > 65535 {
		return fmt.Errorf("camera port %d out of range", c.Camera.Port)
	}
	if c.Camera.Timeout <= 0 {
		return fmt.Errorf("camera timeout must be positive")
	}
	if c.Camera.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.Camera.RetryInterval < 0 {
		return fmt.Errorf("retry interval must not be negative")
	}
	switch c.Camera.RetryPolicy {
	case "", "fixed", "exponential":
	default:
		return fmt.Errorf("retry policy %q must be fixed or exponential", c.Camera.RetryPolicy)
	}
	return nil
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
