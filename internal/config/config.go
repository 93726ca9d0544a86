package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Cache backends.
const (
	CacheBackendFile   = "file"
	CacheBackendMemory = "memory"
)

// Config holds all service settings. Keys match the lower-cased environment
// variable names, so HTTP_ADDR and http_addr in a YAML file set the same field.
type Config struct {
	HTTPAddr        string        `koanf:"http_addr"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	ShutdownTimeout time.Duration `koanf:"-"`

	// Position source. An empty key disables it and every resolution falls
	// back to the local approximation.
	AstroAPIKey         string        `koanf:"astro_api_key"`
	AstroAPIBaseURL     string        `koanf:"astro_api_base_url"`
	AstroAPITimeout     time.Duration `koanf:"astro_api_timeout"`
	AstroAPIMaxAttempts int           `koanf:"astro_api_max_attempts"`
	AstroAPIRetryDelay  time.Duration `koanf:"astro_api_retry_delay"`
	AstroAPIMaxJitter   time.Duration `koanf:"astro_api_max_jitter"`

	// Position cache.
	CacheBackend    string        `koanf:"cache_backend"`
	CacheDir        string        `koanf:"cache_dir"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	// Model training.
	ModelSeed             int64 `koanf:"model_seed"`
	ModelSyntheticSamples int   `koanf:"model_synthetic_samples"`
	ModelTrees            int   `koanf:"model_trees"`

	// Prediction stream.
	KafkaEnabled     bool     `koanf:"kafka_enabled"`
	KafkaBrokersRaw  string   `koanf:"kafka_brokers"`
	KafkaBrokers     []string `koanf:"-"`
	KafkaSourceTopic string   `koanf:"kafka_source_topic"`
	KafkaSinkTopic   string   `koanf:"kafka_sink_topic"`
	KafkaGroupID     string   `koanf:"kafka_group_id"`

	// StreamRequestTimeout bounds one streamed prediction, position source
	// retries included. A request past it is scored from the fallback.
	StreamRequestTimeout time.Duration `koanf:"stream_request_timeout"`

	BatchSize          int           `koanf:"-"`
	BatchFlushInterval time.Duration `koanf:"-"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		HTTPAddr:  ":8080",
		LogLevel:  "info",
		LogFormat: "json",

		AstroAPIBaseURL:     "https://json.freeastrologyapi.com",
		AstroAPITimeout:     5 * time.Second,
		AstroAPIMaxAttempts: 3,
		AstroAPIRetryDelay:  2 * time.Second,
		AstroAPIMaxJitter:   2 * time.Second,

		CacheBackend:    CacheBackendFile,
		CacheDir:        "cache",
		CacheTTL:        24 * time.Hour,
		CacheMaxEntries: 1000,

		ModelSeed:             42,
		ModelSyntheticSamples: 2000,
		ModelTrees:            100,

		KafkaBrokersRaw:  "localhost:9092",
		KafkaSourceTopic: "chart-requests",
		KafkaSinkTopic:   "career-recommendations",
		KafkaGroupID:     "career-scoring-engine",

		StreamRequestTimeout: 10 * time.Second,
	}
}

// Load layers defaults, the YAML file named by CAREER_CONFIG (if any), and
// environment variables, lowest precedence first. Shutdown and batch settings
// come from the environment only.
func Load() (*Config, error) {
	cfg := Defaults()

	k := koanf.New(".")
	if path := os.Getenv("CAREER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	keys := knownKeys()
	envProvider := env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !keys[key] {
			return ""
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var err error
	if cfg.ShutdownTimeout, err = sharedcfg.ParseShutdownTimeout(); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = sharedcfg.ParseBatchSize(); err != nil {
		return nil, err
	}
	if cfg.BatchFlushInterval, err = sharedcfg.ParseBatchFlushInterval(); err != nil {
		return nil, err
	}
	cfg.KafkaBrokers = sharedcfg.ParseBrokers(cfg.KafkaBrokersRaw)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SourceEnabled reports whether an API key for the position source is set.
func (c *Config) SourceEnabled() bool {
	return c.AstroAPIKey != ""
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.AstroAPITimeout <= 0 {
		return errors.New("invalid ASTRO_API_TIMEOUT: must be a positive duration")
	}
	if c.AstroAPIMaxAttempts < 1 {
		return errors.New("invalid ASTRO_API_MAX_ATTEMPTS: must be at least 1")
	}
	if c.AstroAPIRetryDelay < 0 || c.AstroAPIMaxJitter < 0 {
		return errors.New("invalid ASTRO_API_RETRY_DELAY or ASTRO_API_MAX_JITTER: must not be negative")
	}

	switch c.CacheBackend {
	case CacheBackendFile:
		if c.CacheDir == "" {
			return errors.New("CACHE_DIR is required for the file cache backend")
		}
	case CacheBackendMemory:
		if c.CacheMaxEntries < 1 {
			return errors.New("invalid CACHE_MAX_ENTRIES: must be at least 1")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: want %s or %s", c.CacheBackend, CacheBackendFile, CacheBackendMemory)
	}
	if c.CacheTTL <= 0 {
		return errors.New("invalid CACHE_TTL: must be a positive duration")
	}

	if c.ModelTrees < 1 {
		return errors.New("invalid MODEL_TREES: must be at least 1")
	}
	if c.ModelSyntheticSamples < 0 {
		return errors.New("invalid MODEL_SYNTHETIC_SAMPLES: must not be negative")
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_SINK_TOPIC is required")
		}
		if c.StreamRequestTimeout <= 0 {
			return errors.New("invalid STREAM_REQUEST_TIMEOUT: must be a positive duration")
		}
	}
	return nil
}

// knownKeys lists the koanf keys of Config, used to keep unrelated
// environment variables out of the config tree.
func knownKeys() map[string]bool {
	return map[string]bool{
		"http_addr":               true,
		"log_level":               true,
		"log_format":              true,
		"astro_api_key":           true,
		"astro_api_base_url":      true,
		"astro_api_timeout":       true,
		"astro_api_max_attempts":  true,
		"astro_api_retry_delay":   true,
		"astro_api_max_jitter":    true,
		"cache_backend":           true,
		"cache_dir":               true,
		"cache_ttl":               true,
		"cache_max_entries":       true,
		"model_seed":              true,
		"model_synthetic_samples": true,
		"model_trees":             true,
		"kafka_enabled":           true,
		"kafka_brokers":           true,
		"kafka_source_topic":      true,
		"kafka_sink_topic":        true,
		"kafka_group_id":          true,
		"stream_request_timeout":  true,
	}
}
