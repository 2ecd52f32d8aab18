package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"GestLoc"`
		Port      int    `envconfig:"PORT" default:"8080"`
		Env       string `envconfig:"APP_ENV" default:"development"`
		PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	}

	DB struct {
		Host            string        `envconfig:"DB_HOST" default:"localhost"`
		Port            int           `envconfig:"DB_PORT" default:"5432"`
		User            string        `envconfig:"DB_USER" default:"postgres"`
		Password        string        `envconfig:"DB_PASSWORD" default:""`
		Name            string        `envconfig:"DB_NAME" default:"gestloc"`
		SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
		AcquireTimeout  time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"5s"`
		AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Auth struct {
		// Empty disables bearer authentication. Only meant for local development.
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	Storage struct {
		Driver          string        `envconfig:"STORAGE_DRIVER" default:"fs"`
		Dir             string        `envconfig:"STORAGE_DIR" default:"./data/storage"`
		SigningKey      string        `envconfig:"STORAGE_SIGNING_KEY"`
		SupabaseURL     string        `envconfig:"SUPABASE_URL"`
		SupabaseKey     string        `envconfig:"SUPABASE_KEY"`
		URLTTL          time.Duration `envconfig:"STORAGE_URL_TTL" default:"1h"`
		ReceiptsBucket  string        `envconfig:"STORAGE_BUCKET_RECEIPTS" default:"receipts"`
		ContractsBucket string        `envconfig:"STORAGE_BUCKET_CONTRACTS" default:"contracts"`
		DocumentsBucket string        `envconfig:"STORAGE_BUCKET_DOCUMENTS" default:"documents"`
		TicketsBucket   string        `envconfig:"STORAGE_BUCKET_TICKETS" default:"maintenance-tickets"`
	}

	Receipt struct {
		HashSecret      string `envconfig:"RECEIPT_HASH_SECRET" required:"true"`
		VerificationURL string `envconfig:"RECEIPT_VERIFICATION_URL" default:"http://localhost:3000"`
		SigningEnabled  bool   `envconfig:"RECEIPT_SIGNING_ENABLED" default:"true"`
		SignerName      string `envconfig:"RECEIPT_SIGNER_NAME" default:"GestLoc"`
		PurgeOnRevoke   bool   `envconfig:"RECEIPT_PURGE_ON_REVOKE" default:"false"`
	}

	Owner struct {
		Name       string `envconfig:"OWNER_NAME"`
		Company    string `envconfig:"OWNER_COMPANY"`
		Address    string `envconfig:"OWNER_ADDRESS"`
		PostalCode string `envconfig:"OWNER_POSTAL_CODE"`
		City       string `envconfig:"OWNER_CITY"`
		SIRET      string `envconfig:"OWNER_SIRET"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

func (c *Config) Production() bool {
	return c.App.Env == "production"
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) check() error {
	if c.Receipt.HashSecret == "" {
		return fmt.Errorf("RECEIPT_HASH_SECRET must not be empty")
	}

	switch c.Storage.Driver {
	case "fs":
		if c.Storage.SigningKey == "" {
			return fmt.Errorf("STORAGE_SIGNING_KEY is required for the fs storage driver")
		}
	case "supabase":
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase storage driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Production() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production")
	}

	return nil
}
