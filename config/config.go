package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides applied by Load.
const (
	EnvAPIURL   = "MARKETINSIGHT_API_URL"
	EnvSymbol   = "MARKETINSIGHT_SYMBOL"
	EnvLogLevel = "MARKETINSIGHT_LOG_LEVEL"
)

// DotEnv is read by Load when it exists in the working directory. Variables
// already set in the process environment take precedence over it.
const DotEnv = ".env"

var validate = validator.New()

// Config is the complete client configuration.
type Config struct {
	API    APIConfig    `json:"api" yaml:"api"`
	Client ClientConfig `json:"client" yaml:"client"`
	Log    LogConfig    `json:"log" yaml:"log"`
	Watch  WatchConfig  `json:"watch" yaml:"watch"`
}

// APIConfig locates the collaborator API.
type APIConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url" default:"http://127.0.0.1:5000/api" validate:"required,url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gte=0"` // 0 = no timeout
}

// ClientConfig holds the session's initial state.
type ClientConfig struct {
	Symbol string `json:"symbol" yaml:"symbol" default:"BANKNIFTY"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// WatchConfig drives the scheduled refresh.
type WatchConfig struct {
	Schedule       string `json:"schedule" yaml:"schedule" default:"@every 5m" validate:"required"`
	GenerateReport bool   `json:"generate_report" yaml:"generate_report"`
	MetricsAddr    string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`
}

// LoadFromFile loads configuration from a file (YAML or JSON). Missing
// fields take their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// readFile parses path and fills defaults without validating.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = &Config{}
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path when it is non-empty and returns defaults otherwise,
// then applies environment overrides from the process and DotEnv. The
// result is validated once, after the overrides.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation, for callers that layer more overrides
// on top and validate the final result themselves.
func Read(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = readFile(path)
		if err != nil {
			return nil, err
		}
	}

	getenv, err := envLookup(DotEnv)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from the environment via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvSymbol)); v != "" {
		c.Client.Symbol = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// envLookup reads the process environment, falling back to the values in
// dotenv when that file exists.
func envLookup(dotenv string) (func(string) string, error) {
	vars, err := godotenv.Read(dotenv)
	if errors.Is(err, fs.ErrNotExist) {
		return os.Getenv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dotenv, err)
	}

	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return vars[key]
	}, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldMessage renders a validation failure with the yaml-style path,
// e.g. "api.base_url is required".
func fieldMessage(fe validator.FieldError) string {
	field := yamlPath(fe.StructNamespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", field)
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

var yamlNames = map[string]string{
	"API":            "api",
	"BaseURL":        "base_url",
	"Timeout":        "timeout",
	"Client":         "client",
	"Symbol":         "symbol",
	"Log":            "log",
	"Level":          "level",
	"Format":         "format",
	"Output":         "output",
	"Watch":          "watch",
	"Schedule":       "schedule",
	"GenerateReport": "generate_report",
	"MetricsAddr":    "metrics_addr",
}

func yamlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		if n, ok := yamlNames[p]; ok {
			parts[i] = n
		}
	}
	return strings.Join(parts, ".")
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}
