package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/oarkflow/bcl"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/json"
	"github.com/oarkflow/squealx"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const redactedSecret = "********"

// Config is loaded once at process start and handed to the pipelines.
// Defaults are overlaid by an optional file and then by environment
// variables, so a value set explicitly in the file wins even when it is zero.
type Config struct {
	Postgres Database `yaml:"postgres" json:"postgres"`
	Mongo    Mongo    `yaml:"mongo" json:"mongo"`
	Seed     Seed     `yaml:"seed" json:"seed"`
	Schedule Schedule `yaml:"schedule" json:"schedule"`
}

// Database addresses the relational store. Driver is one of postgres,
// sqlite or mysql.
type Database struct {
	Driver       string `yaml:"driver" json:"driver" env:"POSTGRES_DRIVER"`
	Host         string `yaml:"host" json:"host" env:"POSTGRES_HOST"`
	Port         int    `yaml:"port" json:"port" env:"POSTGRES_PORT"`
	Username     string `yaml:"username" json:"username" env:"POSTGRES_USER"`
	Password     string `yaml:"password" json:"password" env:"POSTGRES_PASS"`
	Database     string `yaml:"database" json:"database" env:"POSTGRES_DB"`
	MaxOpenConns int    `yaml:"max_open_conns" json:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" json:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS"`
}

func (d Database) ToSquealxConfig() squealx.Config {
	return squealx.Config{
		Driver:      d.Driver,
		Host:        d.Host,
		Port:        d.Port,
		Username:    d.Username,
		Password:    d.Password,
		Database:    d.Database,
		MaxOpenCons: d.MaxOpenConns,
		MaxIdleCons: d.MaxIdleConns,
	}
}

// Mongo addresses the document store. URI wins over the individual
// connection fields when set.
type Mongo struct {
	URI        string `yaml:"uri" json:"uri" env:"MONGO_URI"`
	Host       string `yaml:"host" json:"host" env:"MONGO_HOST"`
	Port       int    `yaml:"port" json:"port" env:"MONGO_PORT"`
	Username   string `yaml:"username" json:"username" env:"MONGO_USER"`
	Password   string `yaml:"password" json:"password" env:"MONGO_PASS"`
	Database   string `yaml:"database" json:"database" env:"MONGO_DB"`
	Collection string `yaml:"collection" json:"collection" env:"MONGO_COLLECTION"`
}

type Seed struct {
	File         string `yaml:"file" json:"file" env:"SEED_FILE"`
	Sheet        string `yaml:"sheet" json:"sheet" env:"SEED_SHEET"`
	SkipTruncate bool   `yaml:"skip_truncate" json:"skip_truncate" env:"SEED_SKIP_TRUNCATE"`
	AutoCreate   bool   `yaml:"auto_create" json:"auto_create" env:"SEED_AUTO_CREATE"`
	BatchSize    int    `yaml:"batch_size" json:"batch_size" env:"SEED_BATCH_SIZE"`
}

// Schedule drives the recurring pipeline when it runs under the scheduler.
// A failed run is replayed from the start up to Retries more times.
type Schedule struct {
	Spec       string        `yaml:"spec" json:"spec" env:"SCHEDULE_SPEC"`
	Retries    int           `yaml:"retries" json:"retries" env:"SCHEDULE_RETRIES"`
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay" env:"SCHEDULE_RETRY_DELAY"`
	LockFile   string        `yaml:"lock_file" json:"lock_file" env:"SCHEDULE_LOCK_FILE"`
	// HistoryDir keeps one JSON record per run. Empty disables history.
	HistoryDir string `yaml:"history_dir" json:"history_dir" env:"SCHEDULE_HISTORY_DIR"`
}

var supportedDrivers = []string{"postgres", "sqlite", "mysql"}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Postgres: Database{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         5436,
			Username:     "daria",
			Password:     "daria1234",
			Database:     "products",
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
		Mongo: Mongo{
			Host:       "localhost",
			Port:       27017,
			Username:   "daria",
			Password:   "daria1234",
			Database:   "Amazon",
			Collection: "Products",
		},
		Seed: Seed{
			File:      "Amazon-Products - online.xlsx",
			BatchSize: 500,
		},
		Schedule: Schedule{
			Spec:       "@once",
			Retries:    3,
			RetryDelay: 5 * time.Minute,
		},
	}
}

// Load starts from Default, overlays path (YAML, JSON or BCL) when given and
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."), &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return finish(&cfg)
}

// LoadFromString decodes raw config text; format is yaml, json or bcl.
func LoadFromString(content, format string) (*Config, error) {
	cfg := Default()
	if err := decode([]byte(content), strings.ToLower(format), &cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

func decode(data []byte, format string, cfg *Config) error {
	switch format {
	case "yaml", "yml":
		return yaml.Unmarshal(data, cfg)
	case "json":
		return json.Unmarshal(data, cfg)
	case "bcl":
		_, err := bcl.Unmarshal(data, cfg)
		return err
	default:
		return fmt.Errorf("unsupported config format: %q", format)
	}
}

func finish(cfg *Config) (*Config, error) {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(supportedDrivers, c.Postgres.Driver) {
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidConfig, c.Postgres.Driver)
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("%w: relational database name is required", ErrInvalidConfig)
	}
	if c.Mongo.Database == "" || c.Mongo.Collection == "" {
		return fmt.Errorf("%w: mongo database and collection are required", ErrInvalidConfig)
	}
	if c.Seed.BatchSize <= 0 {
		return fmt.Errorf("%w: seed batch size must be positive", ErrInvalidConfig)
	}
	if c.Schedule.Retries < 0 || c.Schedule.RetryDelay < 0 {
		return fmt.Errorf("%w: schedule retries and delay must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Postgres.Password != "" {
		c.Postgres.Password = redactedSecret
	}
	if c.Mongo.Password != "" {
		c.Mongo.Password = redactedSecret
	}
	if c.Mongo.URI != "" {
		c.Mongo.URI = redactURI(c.Mongo.URI)
	}
	return c
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
