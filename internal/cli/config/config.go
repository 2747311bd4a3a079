package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appconfig "github.com/rustyeddy/marketinsight/config"
	"github.com/rustyeddy/marketinsight/insight"
	"github.com/rustyeddy/marketinsight/internal/logger"
	"github.com/rustyeddy/marketinsight/internal/metrics"
	"github.com/rustyeddy/marketinsight/session"
)

// RootConfig holds the persistent flags and what they resolve to.
type RootConfig struct {
	ConfigPath string
	APIURL     string
	LogLevel   string
	LogFormat  string
	Timeout    time.Duration

	// Set by Load.
	Config *appconfig.Config
	Log    zerolog.Logger

	closer io.Closer
}

// Load reads the config file and environment, then applies any root flag
// the user set explicitly and validates the result. It also builds the
// logger.
func (rc *RootConfig) Load(cmd *cobra.Command) error {
	cfg, err := appconfig.Read(rc.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.BaseURL = rc.APIURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = rc.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = rc.LogFormat
	}
	if flags.Changed("timeout") {
		cfg.API.Timeout = rc.Timeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}

	rc.Config = cfg
	rc.Log = log
	rc.closer = closer
	return nil
}

// Close releases the log file, if any.
func (rc *RootConfig) Close() error {
	if rc.closer == nil {
		return nil
	}
	return rc.closer.Close()
}

// NewClient builds an API client from the resolved config. rec may be nil.
func (rc *RootConfig) NewClient(rec *metrics.Recorder) *insight.Client {
	opts := []insight.Option{
		insight.WithLogger(rc.Log.With().Str("component", "insight").Logger()),
		insight.WithMetrics(rec),
	}
	if rc.Config.API.Timeout > 0 {
		opts = append(opts, insight.WithTimeout(rc.Config.API.Timeout))
	}
	return insight.NewClient(rc.Config.API.BaseURL, opts...)
}

// NewSession builds a session over api. An empty symbol uses the configured
// one.
func (rc *RootConfig) NewSession(api session.API, symbol string, opts ...session.Option) *session.Session {
	if symbol == "" {
		symbol = rc.Config.Client.Symbol
	}
	base := []session.Option{
		session.WithSymbol(symbol),
		session.WithLogger(rc.Log.With().Str("component", "session").Logger()),
	}
	return session.New(api, append(base, opts...)...)
}
