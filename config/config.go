package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.4"

type Config struct {
	Server      ServerConfig
	Supabase    SupabaseConfig
	Database    DatabaseConfig
	MLS         MLSConfig
	Redis       RedisConfig
	SMTP        SMTPConfig
	Security    SecurityConfig
	Environment string
	LogLevel    string
	Version     string

	// HTTPClientTimeout bounds outgoing calls to the data API, the auth API
	// and the listings API. Zero means no client-side timeout.
	HTTPClientTimeout time.Duration
}

type ServerConfig struct {
	Port int
	Host string
	// PublicURL is used to build absolute redirect targets for the auth callback
	PublicURL string
}

type SupabaseConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

// DatabaseConfig is only used by cmd/migrate; the web process talks to the
// data API over HTTP.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MLSConfig struct {
	APIURL   string
	APIKey   string
	CacheTTL time.Duration
	// LookupsPerMinute caps lookups per signed-in user
	LookupsPerMinute int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type SecurityConfig struct {
	// SecretKey seals third-party tokens stored on profiles
	SecretKey    string
	CookieSecure bool
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
	// DatabaseOnly skips the checks that only the web process needs
	DatabaseOnly bool
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)
	v.SetDefault("HTTP_CLIENT_TIMEOUT", "15s")
	v.SetDefault("COOKIE_SECURE", true)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "require")

	v.SetDefault("MLS_CACHE_TTL", "10m")
	v.SetDefault("MLS_LOOKUPS_PER_MINUTE", 30)

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "MySuperTC")

	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	config := &Config{
		Server: ServerConfig{
			Port:      v.GetInt("SERVER_PORT"),
			Host:      v.GetString("SERVER_HOST"),
			PublicURL: strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
		},
		Supabase: SupabaseConfig{
			URL:       strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
			AnonKey:   v.GetString("SUPABASE_ANON_KEY"),
			JWTSecret: v.GetString("SUPABASE_JWT_SECRET"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		MLS: MLSConfig{
			APIURL:           v.GetString("MLS_API_URL"),
			APIKey:           v.GetString("MLS_API_KEY"),
			CacheTTL:         v.GetDuration("MLS_CACHE_TTL"),
			LookupsPerMinute: v.GetInt("MLS_LOOKUPS_PER_MINUTE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Security: SecurityConfig{
			SecretKey:    v.GetString("SECRET_KEY"),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
		},
		Environment:       v.GetString("ENVIRONMENT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		Version:           v.GetString("VERSION"),
		HTTPClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT"),
	}

	if opts.DatabaseOnly {
		if config.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
		return config, nil
	}

	if config.Supabase.URL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if config.Supabase.AnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if config.Security.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}

	if config.Server.PublicURL == "" {
		config.Server.PublicURL = fmt.Sprintf("http://localhost:%d", config.Server.Port)
	}

	return config, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
