package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MERCATO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCS           GCSConfig
	Media         MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"MERCATO_APP_ENV" required:"true"`
	Port         string   `envconfig:"MERCATO_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"MERCATO_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MERCATO_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MERCATO_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MERCATO_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"MERCATO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCATO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCATO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCATO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCATO_REDIS_URL"`
	Address      string        `envconfig:"MERCATO_REDIS_ADDR"`
	Password     string        `envconfig:"MERCATO_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCATO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCATO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCATO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCATO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCATO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCATO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MERCATO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MERCATO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MERCATO_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"MERCATO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MERCATO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MERCATO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MERCATO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MERCATO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MERCATO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MERCATO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MERCATO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MERCATO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MERCATO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MERCATO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MERCATO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERCATO_AUTO_MIGRATE" default:"false"`
}

type GCSConfig struct {
	BucketName             string `envconfig:"MERCATO_GCS_BUCKET_NAME"`
	CredentialsJSON        string `envconfig:"MERCATO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MERCATO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"MERCATO_MAX_UPLOAD_MB" default:"10"`
}
