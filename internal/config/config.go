package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Delivery
	Endpoint      string
	APIKey        string
	FlushInterval time.Duration
	QueueCapacity int

	// HTTP/Fetching
	HTTPTimeout time.Duration
	UserAgent   string

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// Rendering
	Render     bool
	ChromePath string

	// Analysis
	TargetKeywords []string
	Concurrency    int

	// History
	HistoryPath string
}

// fileConfig is the YAML shape of an optional config file
type fileConfig struct {
	LogLevel       string   `yaml:"log_level"`
	Endpoint       string   `yaml:"endpoint"`
	APIKey         string   `yaml:"api_key"`
	FlushInterval  string   `yaml:"flush_interval"`
	QueueCapacity  int      `yaml:"queue_capacity"`
	HTTPTimeout    string   `yaml:"http_timeout"`
	UserAgent      string   `yaml:"user_agent"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	ChromePath     string   `yaml:"chrome_path"`
	TargetKeywords []string `yaml:"target_keywords"`
	Concurrency    int      `yaml:"concurrency"`
	HistoryPath    string   `yaml:"history_path"`
}

// Load builds a Config by combining defaults, an optional config file,
// environment variables, and CLI flags, in increasing precedence.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		FlushInterval:     DefaultFlushInterval,
		QueueCapacity:     DefaultQueueCapacity,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		Concurrency:       DefaultConcurrency,
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryPath = filepath.Join(home, DefaultHistoryPath)
	}

	// Config file, when given via flag or the default location
	path := ""
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if err := applyFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	// Read CLI flags if provided
	if cmd != nil {
		applyFlags(cfg, cmd)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyFile merges a YAML config file. An explicit path must exist; the
// default location is optional.
func applyFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".seolens", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Endpoint != "" {
		cfg.Endpoint = fc.Endpoint
	}
	if fc.APIKey != "" {
		cfg.APIKey = fc.APIKey
	}
	if fc.FlushInterval != "" {
		d, err := time.ParseDuration(fc.FlushInterval)
		if err != nil {
			return fmt.Errorf("invalid flush_interval in config file: %w", err)
		}
		cfg.FlushInterval = d
	}
	if fc.QueueCapacity > 0 {
		cfg.QueueCapacity = fc.QueueCapacity
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid http_timeout in config file: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.RateLimitRPS > 0 {
		cfg.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst > 0 {
		cfg.RateLimitBurst = fc.RateLimitBurst
	}
	if fc.ChromePath != "" {
		cfg.ChromePath = fc.ChromePath
	}
	if len(fc.TargetKeywords) > 0 {
		cfg.TargetKeywords = fc.TargetKeywords
	}
	if fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if fc.HistoryPath != "" {
		cfg.HistoryPath = fc.HistoryPath
	}

	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SEOLENS_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("SEOLENS_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("SEOLENS_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SEOLENS_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SEOLENS_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.FlushInterval = d
		}
	}
	if v := os.Getenv("SEOLENS_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QueueCapacity = n
		}
	}
	if v := os.Getenv("SEOLENS_HISTORY_PATH"); v != "" {
		cfg.HistoryPath = v
	}
}

func applyFlags(cfg *Config, cmd *cobra.Command) {
	lookup := func(name string) string {
		if f := cmd.Flags().Lookup(name); f != nil {
			return f.Value.String()
		}
		return ""
	}

	if s := lookup("endpoint"); s != "" {
		cfg.Endpoint = s
	}
	if s := lookup("api-key"); s != "" {
		cfg.APIKey = s
	}
	if s := lookup("user-agent"); s != "" {
		cfg.UserAgent = s
	}
	if s := lookup("timeout"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if s := lookup("flush-interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.FlushInterval = d
		}
	}
	if s := lookup("keywords"); s != "" {
		var kws []string
		for _, kw := range strings.Split(s, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		cfg.TargetKeywords = kws
	}
	if s := lookup("concurrency"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if lookup("render") == "true" {
		cfg.Render = true
	}
	if s := lookup("chrome-path"); s != "" {
		cfg.ChromePath = s
	}
	if lookup("json") == "true" {
		cfg.JSONLog = true
	}
	if lookup("verbose") == "true" {
		cfg.LogLevel = "debug"
	}
	if lookup("quiet") == "true" {
		cfg.LogLevel = "error"
	}
}
