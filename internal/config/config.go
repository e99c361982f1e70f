package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Uploads    Uploads    `yaml:"uploads"`
	Log        Log        `yaml:"log"`

	// ReconcileInterval is the period of the booking counter repair loop. Zero (the
	// default) disables it. When enabled, increments made through POST /cars/{id}/book
	// are reset to the number of stored bookings.
	ReconcileInterval time.Duration `yaml:"reconcile_interval" env:"RECONCILE_INTERVAL" env-default:"0s"`
}

type Storage struct {
	Driver   string   `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	Mongo    Mongo    `yaml:"mongo"`
	Database Database `yaml:"postgres"`
}

type Mongo struct {
	URI      string        `yaml:"uri" env:"MONGO_URI"`
	Host     string        `yaml:"host" env:"MONGO_HOST" env-default:"cluster0.62t6y.mongodb.net"`
	User     string        `yaml:"user" env:"MONGO_USER"`
	Password string        `yaml:"password" env:"MONGO_PASS"`
	DBName   string        `yaml:"dbname" env:"MONGO_DB" env-default:"carvex"`
	Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
}

type Database struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"carvex"`
	SSLMode  string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:5000"`
	Port        string        `env:"PORT"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Uploads struct {
	Dir       string `yaml:"dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	URLPrefix string `yaml:"url_prefix" env-default:"/uploads"`
	Field     string `yaml:"field" env-default:"images"`
	MaxFiles  int    `yaml:"max_files" env-default:"5"`
	// MaxMemory is the multipart memory budget in bytes; larger parts spill to temp files.
	MaxMemory int64 `yaml:"max_memory" env-default:"33554432"`
}

type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"3"`
	MaxAge     int    `yaml:"max_age" env-default:"28"`
	Compress   bool   `yaml:"compress"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}

	return cfg
}

// Load reads the optional .env file, then the YAML file at path (if any) and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}

		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ListenAddress returns the HTTP address, with PORT taking precedence over the configured port.
func (c *Config) ListenAddress() string {
	if c.HTTPServer.Port == "" {
		return c.HTTPServer.Address
	}

	host, _, err := net.SplitHostPort(c.HTTPServer.Address)
	if err != nil {
		host = ""
	}

	return net.JoinHostPort(host, c.HTTPServer.Port)
}

// ConnectionURI builds the mongo connection string from credentials unless a full URI is configured.
func (m Mongo) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}

	return fmt.Sprintf("mongodb+srv://%s:%s@%s/%s?retryWrites=true&w=majority",
		m.User, m.Password, m.Host, m.DBName)
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.Mongo.URI == "" && (c.Storage.Mongo.User == "" || c.Storage.Mongo.Password == "") {
			return errors.New("missing required environment variables (MONGO_USER or MONGO_PASS)")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Uploads.MaxFiles <= 0 {
		return errors.New("uploads.max_files must be positive")
	}

	return nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
