package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers selectable through STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	DB     DBConfig
	Mongo  MongoConfig
	Auth   AuthConfig
	Promo  PromoConfig
	Log    LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	// PublicBaseURL is the landing page origin encoded into coupon QR codes.
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:5173"`
	// CORSAllowOrigins is a comma-separated list of browser origins allowed to call the API.
	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
}

// DBConfig holds PostgreSQL configuration.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"redemption_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// MongoConfig holds MongoDB configuration, used when STORE_DRIVER=mongo.
type MongoConfig struct {
	URI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGO_DATABASE" default:"redemption"`
}

// AuthConfig holds admin authentication settings.
// AdminPasswordHash is a bcrypt hash; when empty no admin login succeeds.
type AuthConfig struct {
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL          time.Duration `envconfig:"JWT_TTL" default:"12h"`
	AdminUsername     string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`
}

// PromoConfig holds settings for the promo expiry sweep.
type PromoConfig struct {
	SweepInterval time.Duration `envconfig:"PROMO_SWEEP_INTERVAL" default:"1m"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load reads an optional .env file, then parses environment variables into Config.
// Variables already present in the environment win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.Store.Driver != DriverPostgres && cfg.Store.Driver != DriverMongo {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.Promo.SweepInterval <= 0 {
		return nil, fmt.Errorf("PROMO_SWEEP_INTERVAL must be positive, got %s", cfg.Promo.SweepInterval)
	}
	return &cfg, nil
}
