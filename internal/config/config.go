package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level numplan configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	BodyLimit          string   `toml:"body_limit"`
	ShutdownTimeout    int      `toml:"shutdown_timeout"`
}

// EngineConfig tunes the number engine's request-level defaults; each API
// request may still override them per call.
type EngineConfig struct {
	// DefaultRegion supplies the numbering plan for input without an
	// explicit country code, e.g. "US".
	DefaultRegion string `toml:"default_region"`

	// MatcherLeniency is the default scrutiny for text search:
	// possible, valid, strict_grouping, or exact_grouping.
	MatcherLeniency string `toml:"matcher_leniency"`

	// MatcherMaxTries bounds how many candidates one text search inspects.
	MatcherMaxTries int `toml:"matcher_max_tries"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8095,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          "1MB",
			ShutdownTimeout:    10,
		},
		Engine: EngineConfig{
			DefaultRegion:   "US",
			MatcherLeniency: "valid",
			MatcherMaxTries: 65535,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration with priority: defaults → numplan.toml → env vars
// → CLI flags. The flags parameter allows CLI flag overrides to be passed in.
func Load(configPath string, flags map[string]string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = "numplan.toml"
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if len(c.Engine.DefaultRegion) != 2 || c.Engine.DefaultRegion != strings.ToUpper(c.Engine.DefaultRegion) {
		return fmt.Errorf("engine.default_region must be a two-letter upper-case region code, got %q", c.Engine.DefaultRegion)
	}
	switch c.Engine.MatcherLeniency {
	case "possible", "valid", "strict_grouping", "exact_grouping":
	default:
		return fmt.Errorf("engine.matcher_leniency must be one of: possible, valid, strict_grouping, exact_grouping; got %q", c.Engine.MatcherLeniency)
	}
	if c.Engine.MatcherMaxTries < 1 {
		return fmt.Errorf("engine.matcher_max_tries must be at least 1, got %d", c.Engine.MatcherMaxTries)
	}
	if c.Logging.Level != "" {
		switch c.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging.level must be one of: debug, info, warn, error; got %q", c.Logging.Level)
		}
	}
	if c.Logging.Format != "" {
		switch c.Logging.Format {
		case "json", "text":
		default:
			return fmt.Errorf("logging.format must be \"json\" or \"text\", got %q", c.Logging.Format)
		}
	}
	return nil
}

// Address returns the host:port string for the server to listen on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GenerateDefault writes a commented default numplan.toml to the given path.
func GenerateDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultTOML), 0o644)
}

// ToTOML returns the config serialized as TOML.
func (c *Config) ToTOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// envInt reads an integer from the named environment variable.
// Returns an error if the value is set but not a valid integer.
func envInt(name string, dest *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q is not an integer", name, v)
	}
	*dest = n
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("NUMPLAN_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if err := envInt("NUMPLAN_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if v := os.Getenv("NUMPLAN_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSAllowedOrigins = strings.Split(v, ",")
	}
	if err := envInt("NUMPLAN_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout); err != nil {
		return err
	}
	if v := os.Getenv("NUMPLAN_DEFAULT_REGION"); v != "" {
		cfg.Engine.DefaultRegion = v
	}
	if v := os.Getenv("NUMPLAN_MATCHER_LENIENCY"); v != "" {
		cfg.Engine.MatcherLeniency = v
	}
	if err := envInt("NUMPLAN_MATCHER_MAX_TRIES", &cfg.Engine.MatcherMaxTries); err != nil {
		return err
	}
	if v := os.Getenv("NUMPLAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NUMPLAN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

func applyFlags(cfg *Config, flags map[string]string) {
	if flags == nil {
		return
	}
	if v, ok := flags["port"]; ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v, ok := flags["host"]; ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := flags["region"]; ok && v != "" {
		cfg.Engine.DefaultRegion = strings.ToUpper(v)
	}
}

// validKeys is the complete set of dot-separated config keys.
var validKeys = map[string]bool{
	"server.host": true, "server.port": true,
	"server.cors_allowed_origins": true,
	"server.body_limit":           true, "server.shutdown_timeout": true,
	"engine.default_region": true, "engine.matcher_leniency": true,
	"engine.matcher_max_tries": true,
	"logging.level":            true, "logging.format": true,
}

// IsValidKey returns true if the dotted key is a recognized config key.
func IsValidKey(key string) bool {
	return validKeys[key]
}

// GetValue returns the value for a dotted config key (e.g. "server.port").
func GetValue(cfg *Config, key string) (any, error) {
	switch key {
	case "server.host":
		return cfg.Server.Host, nil
	case "server.port":
		return cfg.Server.Port, nil
	case "server.cors_allowed_origins":
		return strings.Join(cfg.Server.CORSAllowedOrigins, ","), nil
	case "server.body_limit":
		return cfg.Server.BodyLimit, nil
	case "server.shutdown_timeout":
		return cfg.Server.ShutdownTimeout, nil
	case "engine.default_region":
		return cfg.Engine.DefaultRegion, nil
	case "engine.matcher_leniency":
		return cfg.Engine.MatcherLeniency, nil
	case "engine.matcher_max_tries":
		return cfg.Engine.MatcherMaxTries, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	default:
		return nil, fmt.Errorf("unknown configuration key: %s", key)
	}
}

// SetValue reads the existing TOML file, updates a single key, and writes it
// back. Creates the file with just the key if it doesn't exist.
func SetValue(configPath, key, value string) error {
	var data map[string]any
	if raw, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}
	if data == nil {
		data = make(map[string]any)
	}

	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format: %s (expected section.field)", key)
	}
	section, field := parts[0], parts[1]

	sectionMap, ok := data[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		data[section] = sectionMap
	}
	sectionMap[field] = coerceValue(key, value)

	out, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(configPath, out, 0o644)
}

// coerceValue converts a string value to the appropriate Go type for TOML
// serialization.
func coerceValue(key, value string) any {
	switch key {
	case "server.port", "server.shutdown_timeout", "engine.matcher_max_tries":
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}

const defaultTOML = `# numplan configuration

[server]
# Address to listen on.
host = "0.0.0.0"
port = 8095

# CORS allowed origins. Use ["*"] to allow all.
cors_allowed_origins = ["*"]

# Maximum request body size.
body_limit = "1MB"

# Seconds to wait for in-flight requests during shutdown.
shutdown_timeout = 10

[engine]
# Region assumed for numbers typed without a country code.
default_region = "US"

# Default scrutiny for finding numbers in free text:
# possible, valid, strict_grouping, or exact_grouping.
matcher_leniency = "valid"

# Upper bound on candidates inspected per text search.
matcher_max_tries = 65535

[logging]
# Log level: debug, info, warn, error.
level = "info"

# Log format: json or text.
format = "json"
`
