package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		// TTL is the access token lifetime in minutes.
		TTL int `yaml:"ttl"`
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"` // local or object
		BasePath   string `yaml:"base_path"`
		BaseURL    string `yaml:"base_url"`
		SigningKey string `yaml:"signing_key"`
		Bucket     string `yaml:"bucket"`
		Region     string `yaml:"region"`
		AccessKey  string `yaml:"access_key"`
		SecretKey  string `yaml:"secret_key"`
		Endpoint   string `yaml:"endpoint"`
	} `yaml:"storage"`

	App struct {
		// DefaultProperty is the entitlement granted to users registered
		// without one.
		DefaultProperty string `yaml:"default_property"`
		FrontendOrigin  string `yaml:"frontend_origin"`
		// DownloadURLTTL is the signed URL lifetime in minutes.
		DownloadURLTTL int `yaml:"download_url_ttl"`
		// FirstAdminEmail/Password seed the initial admin account when no
		// user with that email exists yet.
		FirstAdminEmail    string `yaml:"first_admin_email"`
		FirstAdminPassword string `yaml:"first_admin_password"`
	} `yaml:"app"`

	RateLimit struct {
		Enabled bool `yaml:"enabled"`
		Limit   int  `yaml:"limit"`
		// Window is the counting window in seconds.
		Window int `yaml:"window"`
	} `yaml:"ratelimit"`
}

// Load reads config.yaml and applies environment overrides on top. A .env
// file, when present, is loaded first so local development needs no exports.
func Load() *Config {
	_ = godotenv.Load()

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			f.Close()
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
		f.Close()
	} else if os.Getenv("DATABASE_URL") == "" {
		// Without a file the environment must carry everything.
		log.Fatalf("Failed to open config file at %s: %v", configPath, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg
}

func applyEnvOverrides(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Env, "SERVER_ENV")

	setString(&cfg.Database.DSN, "DATABASE_URL")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setInt(&cfg.JWT.TTL, "JWT_TTL_MINUTES")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.BasePath, "STORAGE_BASE_PATH")
	setString(&cfg.Storage.BaseURL, "STORAGE_BASE_URL")
	setString(&cfg.Storage.SigningKey, "STORAGE_SIGNING_KEY")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")

	setString(&cfg.App.DefaultProperty, "APP_DEFAULT_PROPERTY")
	setString(&cfg.App.FrontendOrigin, "APP_FRONTEND_ORIGIN")
	setInt(&cfg.App.DownloadURLTTL, "APP_DOWNLOAD_URL_TTL")
	setString(&cfg.App.FirstAdminEmail, "FIRST_ADMIN_EMAIL")
	setString(&cfg.App.FirstAdminPassword, "FIRST_ADMIN_PASSWORD")

	if v := os.Getenv("RATELIMIT_ENABLED"); v != "" {
		cfg.RateLimit.Enabled = v == "true" || v == "1"
	}
	setInt(&cfg.RateLimit.Limit, "RATELIMIT_LIMIT")
	setInt(&cfg.RateLimit.Window, "RATELIMIT_WINDOW_SECONDS")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.JWT.TTL == 0 {
		cfg.JWT.TTL = 15
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "./uploads"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = "/files"
	}
	if cfg.App.DownloadURLTTL == 0 {
		cfg.App.DownloadURLTTL = 60
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 10
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 60
	}
}
