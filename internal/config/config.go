package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Kayky4/vitasyn/internal/calendar"
	"github.com/Kayky4/vitasyn/internal/model"
)

// DefaultPath is used when VITASYN_CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Storage drivers.
const (
	DriverSQLite    = "sqlite"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Booking    BookingConfig    `yaml:"booking"`
	Google     GoogleConfig     `yaml:"google"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Backup     BackupConfig     `yaml:"backup"`
}

type ServerConfig struct {
	Address            string   `yaml:"address"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	ShutdownSeconds    int      `yaml:"shutdown_seconds"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Mongo struct {
		URI         string `yaml:"uri"`
		Database    string `yaml:"database"`
		TimeoutSecs int    `yaml:"timeout_seconds"`
	} `yaml:"mongo"`
	Firestore struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firestore"`
}

type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// CalendarConfig holds the grid presentation constants. It can be hot-reloaded.
type CalendarConfig struct {
	AxisStartHour  int     `yaml:"axis_start_hour"`
	AxisEndHour    int     `yaml:"axis_end_hour"`
	RowHeight      float64 `yaml:"row_height"`
	MinBlockHeight float64 `yaml:"min_block_height"`
	WeekStart      string  `yaml:"week_start"` // "sunday" or "monday"
	NarrowWidth    int     `yaml:"narrow_width"`
	WideWidth      int     `yaml:"wide_width"`
	Timezone       string  `yaml:"timezone"`
	OverlapGuard   bool    `yaml:"overlap_guard"`
}

type BookingConfig struct {
	SessionDuration int `yaml:"session_duration"`
	BufferTime      int `yaml:"buffer_time"`
}

type GoogleConfig struct {
	Enabled           bool    `yaml:"enabled"`
	ClientID          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret"`
	RedirectURL       string  `yaml:"redirect_url"`
	CalendarID        string  `yaml:"calendar_id"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type MonitoringConfig struct {
	HealthCheckPort   int  `yaml:"health_check_port"`
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// LoadEnv loads a .env file when present. A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.Storage.Driver == DriverSQLite {
		if err = os.MkdirAll(filepath.Dir(cfg.Storage.SQLite.Path), 0o755); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse expands ${ENV_VAR} placeholders, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 120
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = 3
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "data/vitasyn.db"
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "vitasyn"
	}
	if c.Storage.Mongo.TimeoutSecs <= 0 {
		c.Storage.Mongo.TimeoutSecs = 10
	}

	c.applyCalendarDefaults()

	if c.Booking.SessionDuration == 0 {
		c.Booking.SessionDuration = model.DefaultSessionDuration
	}
	if c.Booking.BufferTime == 0 {
		c.Booking.BufferTime = model.DefaultBufferTime
	}

	if c.Google.CalendarID == "" {
		c.Google.CalendarID = "primary"
	}
	if c.Google.RequestsPerSecond <= 0 {
		c.Google.RequestsPerSecond = 5
	}
	if c.Google.Burst <= 0 {
		c.Google.Burst = 1
	}

	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
}

func (c *Config) applyCalendarDefaults() {
	d := calendar.DefaultConfig()
	cal := &c.Calendar
	// A zero start hour is a valid axis, so both ends are defaulted together.
	if cal.AxisStartHour == 0 && cal.AxisEndHour == 0 {
		cal.AxisStartHour, cal.AxisEndHour = d.AxisStartHour, d.AxisEndHour
	}
	if cal.RowHeight == 0 {
		cal.RowHeight = d.RowHeight
	}
	if cal.MinBlockHeight == 0 {
		cal.MinBlockHeight = d.MinBlockHeight
	}
	if cal.WeekStart == "" {
		cal.WeekStart = "sunday"
	}
	if cal.NarrowWidth == 0 {
		cal.NarrowWidth = d.NarrowWidth
	}
	if cal.WideWidth == 0 {
		cal.WideWidth = d.WideWidth
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverSQLite:
	case DriverMongo:
		if c.Storage.Mongo.URI == "" {
			errs = append(errs, errors.New("storage.mongo.uri is required for the mongo driver"))
		}
	case DriverFirestore:
		if c.Storage.Firestore.ProjectID == "" {
			errs = append(errs, errors.New("storage.firestore.project_id is required for the firestore driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}

	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("server.rate_limit_per_minute cannot be negative"))
	}
	if c.Redis.CacheTTLSeconds < 0 {
		errs = append(errs, errors.New("redis.cache_ttl_seconds cannot be negative"))
	}

	if _, err := c.Calendar.Layout(); err != nil {
		errs = append(errs, fmt.Errorf("calendar: %w", err))
	}

	if err := c.SessionDefaults().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("booking: %w", err))
	}

	if c.Google.Enabled && (c.Google.ClientID == "" || c.Google.ClientSecret == "") {
		errs = append(errs, errors.New("google.client_id and google.client_secret are required when google is enabled"))
	}

	if c.Backup.RetentionDays < 0 {
		errs = append(errs, errors.New("backup.retention_days cannot be negative"))
	}

	return errors.Join(errs...)
}

// Layout converts the section into calendar engine constants.
func (c CalendarConfig) Layout() (calendar.Config, error) {
	out := calendar.Config{
		AxisStartHour:  c.AxisStartHour,
		AxisEndHour:    c.AxisEndHour,
		RowHeight:      c.RowHeight,
		MinBlockHeight: c.MinBlockHeight,
		NarrowWidth:    c.NarrowWidth,
		WideWidth:      c.WideWidth,
		Location:       time.Local,
	}

	switch strings.ToLower(c.WeekStart) {
	case "", "sunday":
		out.WeekStart = time.Sunday
	case "monday":
		out.WeekStart = time.Monday
	default:
		return out, fmt.Errorf("week_start: expected sunday or monday, got %q", c.WeekStart)
	}

	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return out, fmt.Errorf("timezone: %w", err)
		}
		out.Location = loc
	}

	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// SessionDefaults are applied to professionals with no stored settings.
func (c *Config) SessionDefaults() model.SessionSettings {
	return model.SessionSettings{SessionDuration: c.Booking.SessionDuration, BufferTime: c.Booking.BufferTime}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
