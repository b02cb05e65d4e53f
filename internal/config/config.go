package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Storage     StorageConfig     `yaml:"storage"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Workers     WorkersConfig     `yaml:"workers"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	PoolSize        int           `yaml:"pool_size"`
	IngestionQueue  string        `yaml:"ingestion_queue"`
	DLQSuffix       string        `yaml:"dlq_suffix"`
	CacheKeyPrefix  string        `yaml:"cache_key_prefix"`
	ExtractionTTL   time.Duration `yaml:"extraction_ttl"`
	MaxJobAttempts  int           `yaml:"max_job_attempts"`
	ConsumerTimeout time.Duration `yaml:"consumer_timeout"`
}

type StorageConfig struct {
	S3            S3Config `yaml:"s3"`
	PublicBaseURL string   `yaml:"public_base_url"`
	StagingPrefix string   `yaml:"staging_prefix"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RecognitionConfig struct {
	BaseURL           string        `yaml:"base_url"`
	AuthEndpoint      string        `yaml:"auth_endpoint"`
	RecognizeEndpoint string        `yaml:"recognize_endpoint"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	TokenExpires      time.Duration `yaml:"token_expires"`
	Timeout           time.Duration `yaml:"timeout"`
	RetryAttempts     int           `yaml:"retry_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
}

type WorkersConfig struct {
	Ingest IngestWorkerConfig `yaml:"ingest"`
	Upload UploadWorkerConfig `yaml:"upload"`
}

type IngestWorkerConfig struct {
	Count int `yaml:"count"`
}

type UploadWorkerConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Retries     int           `yaml:"retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

type PipelineConfig struct {
	MaxFileSize       int64    `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	ProductType       string   `yaml:"product_type"`
	PriceRangeMin     float64  `yaml:"price_range_min"`
	PriceRangeMax     float64  `yaml:"price_range_max"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ApplyDefaults()
	return &config, nil
}

func (c *Config) ApplyDefaults() {
	if c.Redis.ExtractionTTL <= 0 {
		c.Redis.ExtractionTTL = 24 * time.Hour
	}
	if c.Redis.MaxJobAttempts <= 0 {
		c.Redis.MaxJobAttempts = 3
	}
	if c.Redis.ConsumerTimeout <= 0 {
		c.Redis.ConsumerTimeout = 5 * time.Second
	}
	if c.Redis.CacheKeyPrefix == "" {
		c.Redis.CacheKeyPrefix = "extraction:"
	}
	if c.Storage.StagingPrefix == "" {
		c.Storage.StagingPrefix = "staging"
	}
	if c.Workers.Ingest.Count <= 0 {
		c.Workers.Ingest.Count = 4
	}
	if c.Workers.Upload.Concurrency <= 0 {
		c.Workers.Upload.Concurrency = 8
	}
	if c.Workers.Upload.Retries <= 0 {
		c.Workers.Upload.Retries = 3
	}
	if c.Recognition.RetryAttempts <= 0 {
		c.Recognition.RetryAttempts = 3
	}
	if c.Pipeline.MaxFileSize <= 0 {
		c.Pipeline.MaxFileSize = 20 << 20
	}
	if len(c.Pipeline.AllowedExtensions) == 0 {
		c.Pipeline.AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}
	}
	if c.Pipeline.PriceRangeMax <= 0 {
		c.Pipeline.PriceRangeMin = 10
		c.Pipeline.PriceRangeMax = 10000
	}
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
