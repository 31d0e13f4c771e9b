package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Redis          RedisConfig          `yaml:"redis"`
	Auth           AuthConfig           `yaml:"auth"`
	Generation     GenerationConfig     `yaml:"generation"`
	Embedding      EmbeddingConfig      `yaml:"embedding"`
	AWS            AWSConfig            `yaml:"aws"`
	Logging        LoggingConfig        `yaml:"logging"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// GenerationConfig points at an OpenAI-compatible chat completions endpoint.
type GenerationConfig struct {
	URL         string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

type AWSConfig struct {
	Region        string `yaml:"region"`
	S3Region      string `yaml:"s3_region"`
	S3Bucket      string `yaml:"s3_bucket"`
	CloudFrontURL string `yaml:"cloudfront_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RecommendationConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RetrieveK      int           `yaml:"retrieve_k"`
	CandidateLimit int           `yaml:"candidate_limit"`
	FallbackKcal   int           `yaml:"fallback_kcal"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "mealrec",
			Name:    "mealrec",
			SSLMode: "disable",
		},
		Redis: RedisConfig{Address: "localhost:6379", PoolSize: 10},
		Auth:  AuthConfig{TokenTTL: 72 * time.Hour},
		Generation: GenerationConfig{
			URL:         "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4.1-mini",
			Temperature: 0.7,
		},
		Embedding: EmbeddingConfig{
			URL:        "https://api.openai.com/v1/embeddings",
			Model:      "text-embedding-3-small",
			Dimensions: 768,
		},
		AWS:     AWSConfig{Region: "ap-northeast-2"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Recommendation: RecommendationConfig{
			RequestTimeout: 30 * time.Second,
			RetrieveK:      20,
			CandidateLimit: 5,
			FallbackKcal:   2000,
		},
	}
}

// Load reads an optional .env file, then an optional YAML file (with ${VAR}
// expansion), then applies environment overrides on top of the defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			expanded := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", configPath, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Recommendation.RetrieveK <= 0 {
		return errors.New("recommendation.retrieve_k must be positive")
	}
	if c.Recommendation.CandidateLimit <= 0 {
		return errors.New("recommendation.candidate_limit must be positive")
	}
	if c.Recommendation.RequestTimeout <= 0 {
		return errors.New("recommendation.request_timeout must be positive")
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding.dimensions must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.Port,
		c.Database.SSLMode,
	)
}

func applyEnv(c *Config) {
	setString(&c.Server.Port, "PORT")

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")

	setString(&c.Redis.Address, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setDuration(&c.Auth.TokenTTL, "TOKEN_TTL")

	setString(&c.Generation.URL, "GENERATION_URL")
	setString(&c.Generation.APIKey, "OPENAI_API_KEY")
	setString(&c.Generation.Model, "GENERATION_MODEL")

	setString(&c.Embedding.URL, "EMBEDDING_URL")
	setString(&c.Embedding.APIKey, "EMBEDDING_API_KEY")
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = c.Generation.APIKey
	}
	setString(&c.Embedding.Model, "EMBEDDING_MODEL")
	setInt(&c.Embedding.Dimensions, "EMBEDDING_DIMENSIONS")

	setString(&c.AWS.Region, "AWS_REGION")
	setString(&c.AWS.S3Region, "S3_REGION")
	if c.AWS.S3Region == "" {
		c.AWS.S3Region = c.AWS.Region
	}
	setString(&c.AWS.S3Bucket, "S3_BUCKET")
	setString(&c.AWS.CloudFrontURL, "CLOUDFRONT_URL")

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setDuration(&c.Recommendation.RequestTimeout, "RECOMMEND_TIMEOUT")
	setInt(&c.Recommendation.RetrieveK, "RECOMMEND_RETRIEVE_K")
	setInt(&c.Recommendation.CandidateLimit, "RECOMMEND_CANDIDATE_LIMIT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
