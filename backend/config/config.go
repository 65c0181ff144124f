package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	uberconfig "go.uber.org/config"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Challenges ChallengesConfig `yaml:"challenges"`
	Logging    LoggingConfig    `yaml:"logging"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	CORS       CORSConfig       `yaml:"cors"`
}

type ServerConfig struct {
	Port     string `yaml:"port"`
	Timezone string `yaml:"timezone"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres, sqlite
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Path     string `yaml:"path"` // sqlite file
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

type SchedulerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	GenerateSpec string        `yaml:"generate_spec"`
	CleanupSpec  string        `yaml:"cleanup_spec"`
	ReminderSpec string        `yaml:"reminder_spec"`
	SummarySpec  string        `yaml:"summary_spec"`
	RotateSpec   string        `yaml:"rotate_spec"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
}

type ChallengesConfig struct {
	Strategy      string `yaml:"strategy"` // category, pool
	PerCategory   int    `yaml:"per_category"`
	PoolSize      int    `yaml:"pool_size"`
	RetentionDays int    `yaml:"retention_days"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// Defaults returns the configuration used when neither a config file nor
// environment variables provide a value.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Timezone: "UTC"},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "updaily",
			SSLMode:  "disable",
			Path:     "updaily.db",
		},
		JWT: JWTConfig{
			Secret:     "secret",
			AccessTTL:  72 * time.Hour,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			GenerateSpec: "0 6 * * *",
			CleanupSpec:  "0 2 * * 0",
			ReminderSpec: "0 20 * * *",
			SummarySpec:  "0 19 * * 0",
			RotateSpec:   "0 0 * * *",
			JobTimeout:   5 * time.Minute,
		},
		Challenges: ChallengesConfig{
			Strategy:      "category",
			PerCategory:   2,
			PoolSize:      5,
			RetentionDays: 30,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		SMTP:    SMTPConfig{Port: 587},
		CORS:    CORSConfig{AllowOrigins: "*"},
	}
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := Defaults()

	configPath := getEnv("CONFIG_PATH", "config.yaml")
	if _, statErr := os.Stat(configPath); statErr == nil {
		provider, err := uberconfig.NewYAML(
			uberconfig.File(configPath),
			uberconfig.Expand(os.LookupEnv),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create config provider: %w", err)
		}
		if err := provider.Get(uberconfig.Root).Populate(cfg); err != nil {
			return nil, fmt.Errorf("failed to populate config: %w", err)
		}
	}

	cfg.overrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Timezone = getEnv("TIMEZONE", c.Server.Timezone)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.AccessTTL = getDuration("JWT_ACCESS_TTL", c.JWT.AccessTTL)
	c.JWT.RefreshTTL = getDuration("JWT_REFRESH_TTL", c.JWT.RefreshTTL)

	c.Scheduler.Enabled = getBool("SCHEDULER_ENABLED", c.Scheduler.Enabled)
	c.Scheduler.GenerateSpec = getEnv("SCHEDULER_GENERATE_SPEC", c.Scheduler.GenerateSpec)
	c.Scheduler.CleanupSpec = getEnv("SCHEDULER_CLEANUP_SPEC", c.Scheduler.CleanupSpec)
	c.Scheduler.ReminderSpec = getEnv("SCHEDULER_REMINDER_SPEC", c.Scheduler.ReminderSpec)
	c.Scheduler.SummarySpec = getEnv("SCHEDULER_SUMMARY_SPEC", c.Scheduler.SummarySpec)
	c.Scheduler.RotateSpec = getEnv("SCHEDULER_ROTATE_SPEC", c.Scheduler.RotateSpec)
	c.Scheduler.JobTimeout = getDuration("SCHEDULER_JOB_TIMEOUT", c.Scheduler.JobTimeout)

	c.Challenges.Strategy = getEnv("CHALLENGES_STRATEGY", c.Challenges.Strategy)
	c.Challenges.PerCategory = getInt("CHALLENGES_PER_CATEGORY", c.Challenges.PerCategory)
	c.Challenges.PoolSize = getInt("CHALLENGES_POOL_SIZE", c.Challenges.PoolSize)
	c.Challenges.RetentionDays = getInt("CHALLENGES_RETENTION_DAYS", c.Challenges.RetentionDays)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)

	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.Username = getEnv("SMTP_USERNAME", c.SMTP.Username)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.From)

	c.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", c.CORS.AllowOrigins)
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Challenges.Strategy {
	case "category", "pool":
	default:
		return fmt.Errorf("unsupported challenge strategy %q", c.Challenges.Strategy)
	}
	if c.Challenges.PerCategory < 1 {
		return fmt.Errorf("challenges.per_category must be positive, got %d", c.Challenges.PerCategory)
	}
	if c.Challenges.PoolSize < 1 {
		return fmt.Errorf("challenges.pool_size must be positive, got %d", c.Challenges.PoolSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone used for calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}

// DSN returns the postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
