package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	View     ViewConfig     `yaml:"view"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig describes where station metadata and trip records come from
type DataConfig struct {
	Source         string        `yaml:"source" validate:"oneof=http postgres"`
	StationFeedURL string        `yaml:"stationFeedURL" validate:"omitempty,url"`
	TripDataURL    string        `yaml:"tripDataURL" validate:"omitempty,url"`
	DownloadDir    string        `yaml:"downloadDir" validate:"required"`
	Timezone       string        `yaml:"timezone" validate:"required"`
	FetchTimeout   time.Duration `yaml:"fetchTimeout" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// ViewConfig is the initial map view
type ViewConfig struct {
	CenterLon float64 `yaml:"centerLon" validate:"gte=-180,lte=180"`
	CenterLat float64 `yaml:"centerLat" validate:"gte=-85.051129,lte=85.051129"`
	Zoom      float64 `yaml:"zoom" validate:"gtefield=MinZoom,ltefield=MaxZoom"`
	MinZoom   float64 `yaml:"minZoom" validate:"gte=0"`
	MaxZoom   float64 `yaml:"maxZoom" validate:"gtefield=MinZoom,lte=24"`
	Width     int     `yaml:"width" validate:"gt=0"`
	Height    int     `yaml:"height" validate:"gt=0"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error fatal"`
	FilePath   string `yaml:"filePath"`
	DiscordURL string `yaml:"discordURL" validate:"omitempty,url"`
}

// Defaults mirror the Boston/Cambridge Bluebikes map
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Source:         SourceHTTP,
			StationFeedURL: "https://dsc106.com/labs/lab07/data/bluebikes-stations.json",
			TripDataURL:    "https://dsc106.com/labs/lab07/data/bluebikes-traffic-2024-03.csv",
			DownloadDir:    "/tmp/bikemap",
			Timezone:       "America/New_York",
			FetchTimeout:   5 * time.Minute,
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			DBName: "bikemap",
		},
		View: ViewConfig{
			CenterLon: -71.09415,
			CenterLat: 42.36027,
			Zoom:      12,
			MinZoom:   5,
			MaxZoom:   18,
			Width:     1024,
			Height:    768,
		},
		Logging: LoggingConfig{
			Level:    "info",
			FilePath: "bikemap.log",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE and finally environment variables, then validates it.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Data.Source = getEnv("DATA_SOURCE", c.Data.Source)
	c.Data.StationFeedURL = getEnv("STATION_FEED_URL", c.Data.StationFeedURL)
	c.Data.TripDataURL = getEnv("TRIP_DATA_URL", c.Data.TripDataURL)
	c.Data.DownloadDir = getEnv("DOWNLOAD_DIR", c.Data.DownloadDir)
	c.Data.Timezone = getEnv("TIMEZONE", c.Data.Timezone)
	c.Data.FetchTimeout = getDurationEnv("FETCH_TIMEOUT", c.Data.FetchTimeout)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)

	c.View.CenterLon = getFloatEnv("VIEW_CENTER_LON", c.View.CenterLon)
	c.View.CenterLat = getFloatEnv("VIEW_CENTER_LAT", c.View.CenterLat)
	c.View.Zoom = getFloatEnv("VIEW_ZOOM", c.View.Zoom)
	c.View.Width = getIntEnv("VIEW_WIDTH", c.View.Width)
	c.View.Height = getIntEnv("VIEW_HEIGHT", c.View.Height)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.FilePath = getEnv("LOG_FILE", c.Logging.FilePath)
	c.Logging.DiscordURL = getEnv("DISCORD_WEBHOOK_URL", c.Logging.DiscordURL)
}

// Validate checks struct tags and that the timezone is loadable
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(c.Data.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Data.Timezone, err)
	}
	if c.Data.Source == SourceHTTP && (c.Data.StationFeedURL == "" || c.Data.TripDataURL == "") {
		return fmt.Errorf("station feed and trip data URLs are required for the http source")
	}
	if c.Data.Source == SourcePostgres {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Location returns the timezone trips are bucketed in. Validate guarantees it loads.
func (c *DataConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *DatabaseConfig) Validate() error {
	if c.Host == "" || c.Port == "" || c.User == "" || c.DBName == "" {
		return fmt.Errorf("database host, port, user and name are required")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
