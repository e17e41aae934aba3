package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	Log Log `yaml:"log"`

	Redis Redis `yaml:"redis"`

	AMQP AMQP `yaml:"amqp"`

	CORS CORS `yaml:"cors"`
}

type Server struct {
	Address string `yaml:"address"`
	Mode    string `yaml:"mode"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Minutes
}

type Database struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// Redis configures the catalog read cache. An empty Addr disables it.
type Redis struct {
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// AMQP configures order event publishing. An empty URL disables it.
type AMQP struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the YAML file named by CONFIG_PATH, then applies overrides
// from the environment (optionally populated from a .env file).
func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	// A missing .env is normal outside local development
	_ = godotenv.Load()

	return LoadFile(configPath)
}

// LoadFile reads configuration from path and applies environment overrides
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used for any key the file leaves out
func Default() *Config {
	return &Config{
		Server: Server{Address: ":8080", Mode: "release"},
		Database: Database{
			Host:         "localhost",
			Port:         5432,
			SSLMode:      "disable",
			MaxOpenConns: 10,
		},
		JWT:   JWT{ExpiresIn: 60},
		Log:   Log{Level: "info", Format: "json"},
		Redis: Redis{TTLSeconds: 60},
		AMQP:  AMQP{Exchange: "order.exchange"},
	}
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("jwt.expires_in must be positive")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// DSN returns the lib/pq connection string
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL returns the connection URL used by migrate
func (d Database) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func (c *Config) applyEnv() {
	setString(&c.Server.Address, "SERVER_ADDRESS")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.Database.Host, "DATABASE_HOST")
	setString(&c.Database.User, "DATABASE_USER")
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Database.DBName, "DATABASE_NAME")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.AMQP.URL, "AMQP_URL")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
