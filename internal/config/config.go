package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env          string   `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath  string   `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr    string   `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	CORSOrigins  []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:3000"`
	RateLimitRPM int      `yaml:"rate_limit_rpm" env-default:"100"`
	HTTPServer   `yaml:"http_server"`
	Airtable     Airtable `yaml:"airtable"`
	Auth         Auth     `yaml:"auth"`
	Program      Program  `yaml:"program"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Airtable struct {
	APIURL       string        `yaml:"api_url" env-default:"https://api.airtable.com/v0"`
	APIKey       string        `yaml:"api_key" env:"AIRTABLE_PAT" env-required:"true"`
	BaseID       string        `yaml:"base_id" env:"AIRTABLE_BASE_ID" env-required:"true"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env-default:"30s"`
}

type Auth struct {
	JWTSecret    string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
	CookieSecure bool          `yaml:"cookie_secure" env-default:"true"`
	SeedUsername string        `yaml:"seed_username" env:"SEED_ADMIN_USERNAME" env-default:"admin"`
	SeedPassword string        `yaml:"seed_password" env:"SEED_ADMIN_PASSWORD"`
	SeedName     string        `yaml:"seed_name" env-default:"Super Admin"`
}

type Program struct {
	BatchName  string `yaml:"batch_name" env:"BATCH_NAME"`
	StartMonth string `yaml:"start_month" env-default:"Jan"`
	EndMonth   string `yaml:"end_month" env-default:"Dec"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
