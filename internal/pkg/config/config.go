package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, admin identity,
//   payee details) and anything security sensitive
// - default: Values common across all environments (timeouts, sweep cadence)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Payment PaymentConfig
	Admin   AdminConfig
	Bot     BotConfig
	CORS    CORSConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
}

type StorageConfig struct {
	// Driver selects the document store backend: "file" keeps one JSON/text
	// document per logical store under DataDir, "postgres" keeps them in a
	// single documents table.
	Driver   string `envconfig:"STORAGE_DRIVER" default:"file"`
	DataDir  string `envconfig:"STORAGE_DATA_DIR" default:"./data"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:""`
	Password string `envconfig:"DB_PASSWORD" default:""`
	DBName   string `envconfig:"DB_NAME" default:""`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type PaymentConfig struct {
	PayeeID   string `envconfig:"PAYMENT_PAYEE_ID" required:"true"`
	PayeeName string `envconfig:"PAYMENT_PAYEE_NAME" required:"true"`
	Currency  string `envconfig:"PAYMENT_CURRENCY" default:"INR"`
}

type AdminConfig struct {
	ChatID int64 `envconfig:"ADMIN_CHAT_ID" required:"true"`
}

type BotConfig struct {
	MessageCooldown time.Duration `envconfig:"BOT_MESSAGE_COOLDOWN" default:"2s"`
	PendingTTL      time.Duration `envconfig:"BOT_PENDING_TTL" default:"10m"`
	SweepInterval   time.Duration `envconfig:"BOT_SWEEP_INTERVAL" default:"5m"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5*60*60 + 30*60
}

func (c *StorageConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "3999", // Test port
		},
		Storage: StorageConfig{
			Driver:  "file",
			DataDir: "testdata",
		},
		Payment: PaymentConfig{
			PayeeID:   "merchant@test",
			PayeeName: "test merchant",
			Currency:  "INR",
		},
		Admin: AdminConfig{
			ChatID: 1,
		},
		Bot: BotConfig{
			MessageCooldown: 2 * time.Second,
			PendingTTL:      10 * time.Minute,
			SweepInterval:   5 * time.Minute,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
	}
}
