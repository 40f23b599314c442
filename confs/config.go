package confs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Database struct {
	URL      string `env:"DB_URL"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	Debug    bool   `env:"DB_DEBUG,default=false"`
}

type Config struct {
	SecretKey    string `env:"SECRET_KEY,required"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	Port     string `env:"PORT,default=3536"`
	GinMode  string `env:"GIN_MODE,default=release"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
	Storage  string `env:"STORAGE,default=postgres"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=168h"`

	RateLimitRPS   int `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST,default=40"`

	Database Database
}

// LoadConfig loads environment variables from a .env file if present and
// decodes them into a Config.
func LoadConfig() (*Config, error) {
	// Load .env if it exists; a missing file is not an error at runtime
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}
	return FromEnv()
}

// FromEnv decodes the current process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("unknown STORAGE %q (want %s or %s)", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("rate limit settings must be positive")
	}
	return nil
}

func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}
