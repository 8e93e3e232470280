package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   provider credentials) and security settings
// - default: Values common across all environments (operating hours, chunk
//   sizes, timeouts), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Session SessionConfig
	Payment PaymentConfig
	SMTP    SMTPConfig
	OAuth   OAuthConfig
	Booking BookingConfig
	Upload  UploadConfig
	Stream  StreamConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port    string `envconfig:"PORT" required:"true"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"America/Lima"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Range"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Content-Range,Accept-Ranges"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"America/Lima"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"-18000"` // -5*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"30m"`
}

type SessionConfig struct {
	// Sliding inactivity window; any authenticated request renews it.
	InactivityTimeout time.Duration `envconfig:"SESSION_INACTIVITY_TIMEOUT" default:"30m"`
}

type PaymentConfig struct {
	APIKey        string `envconfig:"PAYMENT_API_KEY" required:"true"`
	WebhookSecret string `envconfig:"PAYMENT_WEBHOOK_SECRET" required:"true"`
	BaseURL       string `envconfig:"PAYMENT_BASE_URL" default:"https://api.checkout.example.com"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Email    string `envconfig:"SMTP_EMAIL" default:""`
	Password string `envconfig:"SMTP_PASSWORD" default:""`
	FromName string `envconfig:"SMTP_FROM_NAME" default:"Nazca360"`
}

type OAuthConfig struct {
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" default:""`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" default:""`
	GoogleRedirectURI  string `envconfig:"GOOGLE_REDIRECT_URI" default:""`
}

type BookingConfig struct {
	OpenHour     int    `envconfig:"BOOKING_OPEN_HOUR" default:"9"`
	CloseHour    int    `envconfig:"BOOKING_CLOSE_HOUR" default:"18"`
	SlotMinutes  int    `envconfig:"BOOKING_SLOT_MINUTES" default:"20"`
	CabinCount   int    `envconfig:"BOOKING_CABIN_COUNT" default:"3"`
	PriceCents   int64  `envconfig:"BOOKING_PRICE_CENTS" default:"1500"`
	CurrencyCode string `envconfig:"BOOKING_CURRENCY" default:"usd"`
}

type UploadConfig struct {
	TempDir    string        `envconfig:"UPLOAD_TEMP_DIR" default:"/tmp/nazca360/chunks"`
	FinalDir   string        `envconfig:"UPLOAD_FINAL_DIR" default:"/var/lib/nazca360/videos"`
	SessionTTL time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"2h"`
}

type StreamConfig struct {
	// Per-response cap on the served window of a Range request.
	MaxChunkBytes int64 `envconfig:"STREAM_MAX_CHUNK_BYTES" default:"1048576"`
	// Read increment while copying the window to the client.
	ReadBufferBytes int `envconfig:"STREAM_READ_BUFFER_BYTES" default:"8192"`
}

type StorageConfig struct {
	S3Bucket   string        `envconfig:"S3_BUCKET" default:""`
	S3Region   string        `envconfig:"S3_REGION" default:"us-east-1"`
	PresignTTL time.Duration `envconfig:"S3_PRESIGN_TTL" default:"1h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
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
			Port:    "8889", // Test port
			BaseURL: "http://localhost:8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "America/Lima",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "America/Lima",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: -18000,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "30m",
		},
		Booking: BookingConfig{
			OpenHour:     9,
			CloseHour:    18,
			SlotMinutes:  20,
			CabinCount:   3,
			PriceCents:   1500,
			CurrencyCode: "usd",
		},
		Stream: StreamConfig{
			MaxChunkBytes:   1 << 20,
			ReadBufferBytes: 8 << 10,
		},
	}
}
