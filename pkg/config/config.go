// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Corpus, Lexical, Semantic, Encoder, Search, Kafka, etc.).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Lexical   LexicalConfig   `yaml:"lexical"`
	Semantic  SemanticConfig  `yaml:"semantic"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// CORSOrigins lists browser origins allowed to call the API; "*" allows
	// any. Empty disables CORS headers.
	CORSOrigins     []string      `yaml:"corsOrigins"`
	// RateLimit is the number of requests per minute allowed per client IP.
	// Zero disables limiting.
	RateLimit       int           `yaml:"rateLimit"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings. Kafka is optional; when
// disabled no events are published and the searcher does not listen for
// rebuild notifications.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	IndexComplete   string `yaml:"indexComplete"`
	AnalyticsEvents string `yaml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and result caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// CorpusConfig locates the extracted page corpus. Source is either "csv" or
// "postgres".
type CorpusConfig struct {
	Source    string `yaml:"source"`
	CSVPath   string `yaml:"csvPath"`
	Table     string `yaml:"table"`
	SlidesDir string `yaml:"slidesDir"`
}

// NormalizeConfig toggles the stages of the text normalizer.
type NormalizeConfig struct {
	Lowercase         bool `yaml:"lowercase"`
	RemovePunctuation bool `yaml:"removePunctuation"`
	RemoveNumbers     bool `yaml:"removeNumbers"`
}

// IndexerConfig controls where built indices are stored.
type IndexerConfig struct {
	DataDir string `yaml:"dataDir"`
}

// LexicalConfig holds the TF-IDF vocabulary selection parameters. MaxDF is a
// fraction of the corpus when <= 1 and an absolute document count otherwise.
type LexicalConfig struct {
	MaxFeatures int     `yaml:"maxFeatures"`
	NGramMin    int     `yaml:"ngramMin"`
	NGramMax    int     `yaml:"ngramMax"`
	MinDF       int     `yaml:"minDF"`
	MaxDF       float64 `yaml:"maxDF"`
}

// SemanticConfig controls batch encoding during the semantic index build.
type SemanticConfig struct {
	BatchSize int `yaml:"batchSize"`
	Workers   int `yaml:"workers"`
}

// EncoderConfig selects and configures the text-to-vector encoder. Provider
// is one of "hash", "ollama" or "openai".
type EncoderConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	Host        string        `yaml:"host"`
	APIKey      string        `yaml:"apiKey"`
	Dimensions  int           `yaml:"dimensions"`
	CacheSize   int           `yaml:"cacheSize"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"maxRetries"`
	// MaxInFlight bounds concurrent requests to a remote embedding service.
	MaxInFlight int           `yaml:"maxInFlight"`
}

// SearchConfig controls query defaults. MinScore defaults to -Inf so every
// score is accepted.
type SearchConfig struct {
	DefaultTopK int     `yaml:"defaultTopK"`
	MaxTopK     int     `yaml:"maxTopK"`
	MinScore    float64 `yaml:"minScore"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	// A .env file in the working directory supplies PS_* variables that are
	// not already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the builders and retrievers cannot run with.
func (c *Config) Validate() error {
	if c.Lexical.MaxFeatures <= 0 {
		return fmt.Errorf("lexical.maxFeatures must be positive, got %d", c.Lexical.MaxFeatures)
	}
	if c.Lexical.NGramMin < 1 || c.Lexical.NGramMax < c.Lexical.NGramMin {
		return fmt.Errorf("lexical n-gram range (%d, %d) is invalid", c.Lexical.NGramMin, c.Lexical.NGramMax)
	}
	if c.Lexical.MinDF < 1 {
		return fmt.Errorf("lexical.minDF must be at least 1, got %d", c.Lexical.MinDF)
	}
	if c.Lexical.MaxDF <= 0 {
		return fmt.Errorf("lexical.maxDF must be positive, got %g", c.Lexical.MaxDF)
	}
	if c.Semantic.BatchSize <= 0 {
		return fmt.Errorf("semantic.batchSize must be positive, got %d", c.Semantic.BatchSize)
	}
	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("search.defaultTopK must be positive, got %d", c.Search.DefaultTopK)
	}
	switch c.Corpus.Source {
	case "csv", "postgres":
	default:
		return fmt.Errorf("corpus.source must be csv or postgres, got %q", c.Corpus.Source)
	}
	switch c.Encoder.Provider {
	case "hash", "ollama", "openai":
	default:
		return fmt.Errorf("encoder.provider must be hash, ollama or openai, got %q", c.Encoder.Provider)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit must not be negative, got %d", c.Server.RateLimit)
	}
	return nil
}

// Default returns a Config with defaults suitable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "pagesearch",
			User:            "pagesearch",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "pagesearch-group",
			Topics: KafkaTopics{
				IndexComplete:   "index.complete",
				AnalyticsEvents: "analytics-events",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Corpus: CorpusConfig{
			Source:    "csv",
			CSVPath:   "data/processed/slides_corpus.csv",
			Table:     "corpus_pages",
			SlidesDir: "data/raw_slides",
		},
		Normalize: NormalizeConfig{
			Lowercase:         true,
			RemovePunctuation: true,
			RemoveNumbers:     true,
		},
		Indexer: IndexerConfig{
			DataDir: "models",
		},
		Lexical: LexicalConfig{
			MaxFeatures: 20000,
			NGramMin:    1,
			NGramMax:    2,
			MinDF:       1,
			MaxDF:       0.9,
		},
		Semantic: SemanticConfig{
			BatchSize: 32,
			Workers:   1,
		},
		Encoder: EncoderConfig{
			Provider:    "hash",
			Model:       "all-minilm",
			Host:        "http://localhost:11434",
			Dimensions:  384,
			CacheSize:   1000,
			Timeout:     60 * time.Second,
			MaxRetries:  3,
			MaxInFlight: 4,
		},
		Search: SearchConfig{
			DefaultTopK: 5,
			MaxTopK:     100,
			MinScore:    math.Inf(-1),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads PS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PS_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("PS_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("PS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("PS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("PS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("PS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("PS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("PS_KAFKA_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = enabled
		}
	}
	if v := os.Getenv("PS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("PS_REDIS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Redis.Enabled = enabled
		}
	}
	if v := os.Getenv("PS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PS_CORPUS_SOURCE"); v != "" {
		cfg.Corpus.Source = v
	}
	if v := os.Getenv("PS_CORPUS_CSV_PATH"); v != "" {
		cfg.Corpus.CSVPath = v
	}
	if v := os.Getenv("PS_INDEXER_DATA_DIR"); v != "" {
		cfg.Indexer.DataDir = v
	}
	if v := os.Getenv("PS_ENCODER_PROVIDER"); v != "" {
		cfg.Encoder.Provider = v
	}
	if v := os.Getenv("PS_ENCODER_MODEL"); v != "" {
		cfg.Encoder.Model = v
	}
	if v := os.Getenv("PS_ENCODER_HOST"); v != "" {
		cfg.Encoder.Host = v
	}
	if v := os.Getenv("PS_ENCODER_API_KEY"); v != "" {
		cfg.Encoder.APIKey = v
	}
	if v := os.Getenv("PS_SEARCH_DEFAULT_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultTopK = k
		}
	}
	if v := os.Getenv("PS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
