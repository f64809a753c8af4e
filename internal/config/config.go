package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort          = 5000
	defaultEnv           = "development"
	defaultStorageDriver = "memory"
	defaultSQLitePath    = "rollcall.db"

	defaultLateThresholdMinutes = 15
	defaultPerIPSubmissionCap   = 10
	defaultRequestTimeoutSec    = 30
	defaultHostTokenTTLHours    = 24

	// Default hash of "admin123", kept for parity with fresh installs of the
	// original register. Override host_password_hash in production.
	defaultHostPasswordHash = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
)

// AdmissionPolicy selects how submission origins are authorized.
type AdmissionPolicy string

const (
	// PolicySubnet admits any client sharing the server's /24 prefix.
	PolicySubnet AdmissionPolicy = "subnet"
	// PolicySessionLock admits only the IP that started the active session.
	PolicySessionLock AdmissionPolicy = "session_lock"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string
	AllowedOrigins []string
	JWTSecret      string

	Admission AdmissionConfig
	Storage   StorageConfig
	Session   SessionConfig
	Host      HostConfig
	Guard     GuardConfig

	RequestTimeout time.Duration
}

// AdmissionConfig configures the network admission filter.
type AdmissionConfig struct {
	Policy AdmissionPolicy
	// ServerIP overrides interface discovery, mainly for tests and
	// multi-homed hosts.
	ServerIP string
}

// StorageConfig selects the store backend.
type StorageConfig struct {
	Driver string // "memory" | "sqlite" | "mysql"
	Path   string // sqlite file path
	DSN    string // mysql DSN
}

// SessionConfig configures session behavior.
type SessionConfig struct {
	LateThreshold  time.Duration
	DeviceClaiming bool
}

// HostConfig configures host (moderator) authentication.
type HostConfig struct {
	PasswordHash string // hex sha256 of the host password
	TokenTTL     time.Duration
}

// GuardConfig configures the rate & anomaly guard.
type GuardConfig struct {
	PerIPSubmissionCap int
	Endpoints          map[string]EndpointLimit
}

// EndpointLimit is a per-endpoint fixed-window ceiling.
type EndpointLimit struct {
	Window        time.Duration
	MaxRequests   int
	BlockDuration time.Duration
}

type rawConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	JWTSecret      string   `yaml:"jwt_secret"`

	Admission struct {
		Policy   string `yaml:"policy"`
		ServerIP string `yaml:"server_ip"`
	} `yaml:"admission"`

	Storage struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Session struct {
		LateThresholdMinutes int   `yaml:"late_threshold_minutes"`
		DeviceClaiming       *bool `yaml:"device_claiming"`
	} `yaml:"session"`

	Host struct {
		PasswordHash  string `yaml:"password_hash"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"host"`

	Guard struct {
		PerIPSubmissionCap int                         `yaml:"per_ip_submission_cap"`
		Endpoints          map[string]rawEndpointLimit `yaml:"endpoints"`
	} `yaml:"guard"`

	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

type rawEndpointLimit struct {
	WindowSeconds        int `yaml:"window_seconds"`
	MaxRequests          int `yaml:"max_requests"`
	BlockDurationSeconds int `yaml:"block_duration_seconds"`
}

// Load reads and validates the YAML config at path. A missing file yields
// defaults so the server can start with zero configuration on a fresh host.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawConfig{}
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRaw(cfg, raw)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	switch cfg.Admission.Policy {
	case PolicySubnet, PolicySessionLock:
	default:
		return nil, fmt.Errorf("invalid admission.policy %q in %q, expected %q or %q",
			cfg.Admission.Policy, path, PolicySubnet, PolicySessionLock)
	}
	switch cfg.Storage.Driver {
	case "memory", "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("invalid storage.driver %q in %q, expected memory, sqlite or mysql", cfg.Storage.Driver, path)
	}
	if cfg.Storage.Driver == "mysql" && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return nil, fmt.Errorf("storage.dsn is required in %q when storage.driver is mysql", path)
	}
	if cfg.Session.LateThreshold <= 0 {
		return nil, fmt.Errorf("invalid session.late_threshold_minutes in %q, expected > 0", path)
	}
	for endpoint, limit := range cfg.Guard.Endpoints {
		if limit.Window <= 0 || limit.MaxRequests < 1 {
			return nil, fmt.Errorf("invalid guard.endpoints[%q] in %q", endpoint, path)
		}
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Admission: AdmissionConfig{
			Policy: PolicySubnet,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
			Path:   defaultSQLitePath,
		},
		Session: SessionConfig{
			LateThreshold: defaultLateThresholdMinutes * time.Minute,
		},
		Host: HostConfig{
			PasswordHash: defaultHostPasswordHash,
			TokenTTL:     defaultHostTokenTTLHours * time.Hour,
		},
		Guard: GuardConfig{
			PerIPSubmissionCap: defaultPerIPSubmissionCap,
			Endpoints:          DefaultEndpointLimits(),
		},
		RequestTimeout: defaultRequestTimeoutSec * time.Second,
	}
}

// DefaultEndpointLimits mirrors the per-endpoint ceilings the dashboard and
// submission clients are tuned against.
func DefaultEndpointLimits() map[string]EndpointLimit {
	return map[string]EndpointLimit{
		"/api/attendance": {
			Window:        time.Minute,
			MaxRequests:   30,
			BlockDuration: 2 * time.Minute,
		},
		"/api/session/toggle": {
			Window:        time.Minute,
			MaxRequests:   10,
			BlockDuration: 5 * time.Minute,
		},
		"/api/network/check": {
			Window:      10 * time.Second,
			MaxRequests: 20,
		},
	}
}

// DefaultLimit is applied to endpoints without an explicit entry.
func DefaultLimit() EndpointLimit {
	return EndpointLimit{
		Window:        time.Minute,
		MaxRequests:   100,
		BlockDuration: 2 * time.Minute,
	}
}

func applyRaw(cfg *AppConfig, raw rawConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}

	if v := strings.TrimSpace(raw.Admission.Policy); v != "" {
		cfg.Admission.Policy = AdmissionPolicy(v)
	}
	if v := strings.TrimSpace(raw.Admission.ServerIP); v != "" {
		cfg.Admission.ServerIP = v
	}

	if v := strings.TrimSpace(raw.Storage.Driver); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(raw.Storage.Path); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(raw.Storage.DSN); v != "" {
		cfg.Storage.DSN = v
	}

	if raw.Session.LateThresholdMinutes != 0 {
		cfg.Session.LateThreshold = time.Duration(raw.Session.LateThresholdMinutes) * time.Minute
	}
	if raw.Session.DeviceClaiming != nil {
		cfg.Session.DeviceClaiming = *raw.Session.DeviceClaiming
	}

	if v := strings.TrimSpace(raw.Host.PasswordHash); v != "" {
		cfg.Host.PasswordHash = v
	}
	if raw.Host.TokenTTLHours != 0 {
		cfg.Host.TokenTTL = time.Duration(raw.Host.TokenTTLHours) * time.Hour
	}

	if raw.Guard.PerIPSubmissionCap != 0 {
		cfg.Guard.PerIPSubmissionCap = raw.Guard.PerIPSubmissionCap
	}
	for endpoint, rl := range raw.Guard.Endpoints {
		limit := cfg.Guard.Endpoints[endpoint]
		if rl.WindowSeconds != 0 {
			limit.Window = time.Duration(rl.WindowSeconds) * time.Second
		}
		if rl.MaxRequests != 0 {
			limit.MaxRequests = rl.MaxRequests
		}
		if rl.BlockDurationSeconds != 0 {
			limit.BlockDuration = time.Duration(rl.BlockDurationSeconds) * time.Second
		}
		cfg.Guard.Endpoints[endpoint] = limit
	}

	if raw.RequestTimeoutSeconds != 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
}

// IsDev reports whether the server runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}
