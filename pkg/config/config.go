package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "essenza"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "ESSENZA_APP_ENV"
	EnvDBDSN  = "ESSENZA_DB_DSN"
	EnvDBHost = "ESSENZA_DB_HOST"
	EnvDBUser = "ESSENZA_DB_USER"
	EnvDBName = "ESSENZA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Cloudinary    CloudinaryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"ESSENZA_APP_ENV" required:"true"`
	Port         string   `envconfig:"ESSENZA_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"ESSENZA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"ESSENZA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"ESSENZA_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ESSENZA_DB_DSN"`
	Driver string `envconfig:"ESSENZA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ESSENZA_DB_HOST"`
	LegacyPort     int    `envconfig:"ESSENZA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ESSENZA_DB_USER"`
	LegacyPassword string `envconfig:"ESSENZA_DB_PASSWORD"`
	LegacyName     string `envconfig:"ESSENZA_DB_NAME"`
	LegacySSLMode  string `envconfig:"ESSENZA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ESSENZA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ESSENZA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ESSENZA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ESSENZA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ESSENZA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ESSENZA_REDIS_ADDR"`
	Password     string        `envconfig:"ESSENZA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ESSENZA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ESSENZA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ESSENZA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ESSENZA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ESSENZA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ESSENZA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret         string `envconfig:"ESSENZA_JWT_SECRET" required:"true"`
	Issuer         string `envconfig:"ESSENZA_JWT_ISSUER" required:"true"`
	ExpirationDays int    `envconfig:"ESSENZA_JWT_EXPIRATION_DAYS" default:"30"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationDays <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ESSENZA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ESSENZA_ARGON_TIME" default:"1"`
	ArgonParallelism int `envconfig:"ESSENZA_ARGON_PARALLELISM" default:"4"`
	ArgonSaltLen     int `envconfig:"ESSENZA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ESSENZA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ESSENZA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"5m"`
	LoginEmailLimit    int           `envconfig:"ESSENZA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"10"`
	LoginIPLimit       int           `envconfig:"ESSENZA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"30"`
	RegisterWindow     time.Duration `envconfig:"ESSENZA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ESSENZA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ESSENZA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ESSENZA_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey          string        `envconfig:"ESSENZA_STRIPE_API_KEY"`
	PublishableKey  string        `envconfig:"ESSENZA_STRIPE_PUBLISHABLE_KEY"`
	Secret          string        `envconfig:"ESSENZA_STRIPE_WEBHOOK_SECRET"`
	Env             string        `envconfig:"ESSENZA_STRIPE_ENV" default:"test"`
	WebhookEventTTL time.Duration `envconfig:"ESSENZA_STRIPE_WEBHOOK_EVENT_TTL" default:"168h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CloudinaryConfig struct {
	CloudName string        `envconfig:"ESSENZA_CLOUDINARY_CLOUD_NAME" required:"true"`
	APIKey    string        `envconfig:"ESSENZA_CLOUDINARY_API_KEY" required:"true"`
	APISecret string        `envconfig:"ESSENZA_CLOUDINARY_API_SECRET" required:"true"`
	Folder    string        `envconfig:"ESSENZA_CLOUDINARY_FOLDER" default:"essenza/products"`
	Timeout   time.Duration `envconfig:"ESSENZA_CLOUDINARY_TIMEOUT" default:"30s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
