package config

import (
	"os"
	"time"

	"shindensen_client/global"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// JSONConfig structure based on config.json, overridable from the environment
type JSONConfig struct {
	APIURL           string          `json:"apiURL" env:"SHINDENSEN_API_URL" validate:"required,url"`
	WSURL            string          `json:"wsURL" env:"SHINDENSEN_WS_URL" validate:"required"`
	Username         string          `json:"username" env:"SHINDENSEN_USERNAME" validate:"max=64"`
	DrainBudget      int             `json:"drainBudget" env:"SHINDENSEN_DRAIN_BUDGET" validate:"min=1"`
	EventBudget      int             `json:"eventBudget" env:"SHINDENSEN_EVENT_BUDGET" validate:"min=1"`
	TickMS           int             `json:"tickMS" env:"SHINDENSEN_TICK_MS" validate:"min=1"`
	RequestTimeoutMS int             `json:"requestTimeoutMS" env:"SHINDENSEN_REQUEST_TIMEOUT_MS" validate:"min=0"`
	ChunkSize        int             `json:"chunkSize" env:"SHINDENSEN_CHUNK_SIZE" validate:"min=0"`
	EagerHistory     bool            `json:"eagerHistory" env:"SHINDENSEN_EAGER_HISTORY"`
	LogDir           string          `json:"logDir" env:"SHINDENSEN_LOG_DIR"`
	Debug            bool            `json:"debug" env:"SHINDENSEN_DEBUG"`
	Reconnect        ReconnectConfig `json:"reconnect"`
	MinIO            MinIOConfig     `json:"minIO"`
	Redis            RedisConfig     `json:"redis"`
	DevServer        DevServerConfig `json:"devServer"`
}

// ReconnectConfig spaces out socket reopen attempts when Backoff is set
type ReconnectConfig struct {
	Backoff   bool `json:"backoff" env:"SHINDENSEN_RECONNECT_BACKOFF"`
	InitialMS int  `json:"initialMS" env:"SHINDENSEN_RECONNECT_INITIAL_MS" validate:"min=1"`
	MaxMS     int  `json:"maxMS" env:"SHINDENSEN_RECONNECT_MAX_MS" validate:"gtefield=InitialMS"`
}

// MinIOConfig structure is the config for MinIO connection
type MinIOConfig struct {
	Endpoint     string `json:"endpoint" env:"SHINDENSEN_MINIO_ENDPOINT"`
	User         string `json:"user" env:"SHINDENSEN_MINIO_USER"`
	Password     string `json:"password" env:"SHINDENSEN_MINIO_PASSWORD"`
	Bucket       string `json:"bucket" env:"SHINDENSEN_MINIO_BUCKET" validate:"required"`
	Secure       bool   `json:"secure" env:"SHINDENSEN_MINIO_SECURE"`
	PresignHours int    `json:"presignHours" env:"SHINDENSEN_MINIO_PRESIGN_HOURS" validate:"min=1,max=168"`
}

// RedisConfig points at the user directory snapshot. An empty Addr disables it
type RedisConfig struct {
	Addr     string `json:"addr" env:"SHINDENSEN_REDIS_ADDR"`
	Password string `json:"password" env:"SHINDENSEN_REDIS_PASSWORD"`
	DB       int    `json:"db" env:"SHINDENSEN_REDIS_DB" validate:"min=0"`
	Key      string `json:"key" env:"SHINDENSEN_REDIS_KEY" validate:"required"`
}

// DevServerConfig configures the local development backend
type DevServerConfig struct {
	Port        string `json:"port" env:"SHINDENSEN_DEV_PORT" validate:"required"`
	JWTSecret   string `json:"jwtSecret" env:"SHINDENSEN_DEV_JWT_SECRET" validate:"required,min=8"`
	TokenTTLMin int    `json:"tokenTTLMin" env:"SHINDENSEN_DEV_TOKEN_TTL_MIN" validate:"min=1"`
}

// Default returns the configuration used when no file or environment overrides it
func Default() JSONConfig {
	return JSONConfig{
		APIURL:           "http://127.0.0.1:8080",
		WSURL:            "ws://127.0.0.1:8080/ws",
		DrainBudget:      64,
		EventBudget:      256,
		TickMS:           50,
		RequestTimeoutMS: 10000,
		ChunkSize:        4096,
		EagerHistory:     true,
		Reconnect: ReconnectConfig{
			InitialMS: 500,
			MaxMS:     30000,
		},
		MinIO: MinIOConfig{
			Endpoint:     "127.0.0.1:9000",
			Bucket:       "attachments",
			PresignHours: 24,
		},
		Redis: RedisConfig{
			Key: "shindensen:users",
		},
		DevServer: DevServerConfig{
			Port:        ":8080",
			JWTSecret:   "development-secret",
			TokenTTLMin: 60 * 24,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (JSONConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := global.JSON.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "parse %s", path)
			}
		case !os.IsNotExist(err):
			return cfg, errors.Wrapf(err, "read %s", path)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parse env")
	}
	if err := global.Validator.Struct(cfg); err != nil {
		return cfg, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}

func (c JSONConfig) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

func (c JSONConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

func (c ReconnectConfig) Initial() time.Duration {
	return time.Duration(c.InitialMS) * time.Millisecond
}

func (c ReconnectConfig) Max() time.Duration {
	return time.Duration(c.MaxMS) * time.Millisecond
}

func (c MinIOConfig) Presign() time.Duration {
	return time.Duration(c.PresignHours) * time.Hour
}

func (c DevServerConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMin) * time.Minute
}
