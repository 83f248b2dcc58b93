package conf

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreDynamoDb = "dynamodb"
)

type Config struct {
	Address string `env:"ADDRESS" envDefault:":8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"dev"`
	JwtKey  string `env:"JWT_KEY,notEmpty"`

	TimelinePath              string `env:"TIMELINE_CONFIG" envDefault:"timeline.toml"`
	MaxSubmissionsPerInterval int    `env:"MAX_SUBMISSIONS_PER_INTERVAL" envDefault:"3"`

	// memory, postgres or dynamodb
	SettingsStore       string `env:"SETTINGS_STORE" envDefault:"postgres"`
	DynamoSettingsTable string `env:"DDB_SETTINGS_TABLE" envDefault:"proglv_contest_settings"`

	// memory or postgres
	SubmStore string `env:"SUBM_STORE" envDefault:"postgres"`

	// file payloads stay in memory when empty
	S3SubmBucket string `env:"S3_SUBM_BUCKET"`

	// events are only logged when empty
	SubmQueueUrl string `env:"SUBM_EVENT_QUEUE_URL"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,https://programme.lv,https://www.programme.lv"`

	OtelEndpoint string `env:"OTEL_ENDPOINT"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
}

type PostgresConfig struct {
	Host               string `env:"HOST" envDefault:"localhost"`
	Port               string `env:"PORT" envDefault:"5432"`
	User               string `env:"USER" envDefault:"proglv"`
	Password           string `env:"PW"`
	DB                 string `env:"DB" envDefault:"proglv"`
	SSLMode            string `env:"SSLMODE" envDefault:"disable"`
	PasswordSecretName string `env:"PASSWORD_SECRET_NAME"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.SettingsStore {
	case StoreMemory, StorePostgres, StoreDynamoDb:
	default:
		return fmt.Errorf("unknown SETTINGS_STORE %q", c.SettingsStore)
	}
	switch c.SubmStore {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unknown SUBM_STORE %q", c.SubmStore)
	}
	if c.MaxSubmissionsPerInterval < 1 {
		return fmt.Errorf("MAX_SUBMISSIONS_PER_INTERVAL must be at least 1, got %d", c.MaxSubmissionsPerInterval)
	}
	return nil
}

func (c Config) NeedsPostgres() bool {
	return c.SettingsStore == StorePostgres || c.SubmStore == StorePostgres
}

func (c Config) NeedsAws() bool {
	return c.SettingsStore == StoreDynamoDb ||
		c.S3SubmBucket != "" ||
		c.SubmQueueUrl != "" ||
		(c.NeedsPostgres() && c.Postgres.usesSecret())
}
