package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Log         LogConfig
	Sightengine SightengineConfig
	Roboflow    RoboflowConfig
	Vision      VisionConfig
	Media       MediaConfig
}

type ServerConfig struct {
	Port         int
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type SightengineConfig struct {
	BaseURL   string
	APIUser   string
	APISecret string
	Timeout   time.Duration
}

// Enabled reports whether both credentials are present.
func (c SightengineConfig) Enabled() bool {
	return c.APIUser != "" && c.APISecret != ""
}

type RoboflowConfig struct {
	BaseURL   string
	APIKey    string
	Workspace string
	Workflow  string
	Timeout   time.Duration
}

type VisionConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxAttempts   int
	RatePerSecond float64
}

type MediaConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

// Load reads configuration from defaults, an optional YAML file and the environment.
// The file path comes from CONFIG_PATH; a missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			Mode:         v.GetString("server.mode"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("database.url"),
			AutoMigrate: v.GetBool("database.auto_migrate"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
		Sightengine: SightengineConfig{
			BaseURL:   v.GetString("sightengine.base_url"),
			APIUser:   v.GetString("sightengine.api_user"),
			APISecret: v.GetString("sightengine.api_secret"),
			Timeout:   v.GetDuration("sightengine.timeout"),
		},
		Roboflow: RoboflowConfig{
			BaseURL:   v.GetString("roboflow.base_url"),
			APIKey:    v.GetString("roboflow.api_key"),
			Workspace: v.GetString("roboflow.workspace"),
			Workflow:  v.GetString("roboflow.workflow"),
			Timeout:   v.GetDuration("roboflow.timeout"),
		},
		Vision: VisionConfig{
			BaseURL:       v.GetString("vision.base_url"),
			APIKey:        v.GetString("vision.api_key"),
			Model:         v.GetString("vision.model"),
			Timeout:       v.GetDuration("vision.timeout"),
			MaxAttempts:   v.GetInt("vision.max_attempts"),
			RatePerSecond: v.GetFloat64("vision.rate_per_second"),
		},
		Media: MediaConfig{
			Timeout:  v.GetDuration("media.timeout"),
			MaxBytes: v.GetInt64("media.max_bytes"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("sightengine.base_url", "https://api.sightengine.com")
	v.SetDefault("sightengine.api_user", "")
	v.SetDefault("sightengine.api_secret", "")
	v.SetDefault("sightengine.timeout", 10*time.Second)

	v.SetDefault("roboflow.base_url", "https://serverless.roboflow.com")
	v.SetDefault("roboflow.api_key", "")
	v.SetDefault("roboflow.workspace", "madhus")
	v.SetDefault("roboflow.workflow", "text-recognition")
	v.SetDefault("roboflow.timeout", 15*time.Second)

	v.SetDefault("vision.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "gemini-2.0-flash")
	v.SetDefault("vision.timeout", 45*time.Second)
	v.SetDefault("vision.max_attempts", 2)
	v.SetDefault("vision.rate_per_second", 5.0)

	v.SetDefault("media.timeout", 20*time.Second)
	v.SetDefault("media.max_bytes", int64(25<<20))
}

// bindLegacyEnv keeps the variable names used by existing deployments working.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("sightengine.api_user", "SIGHTENGINE_API_USER")
	_ = v.BindEnv("sightengine.api_secret", "SIGHTENGINE_API_SECRET")
	_ = v.BindEnv("roboflow.api_key", "ROBOFLOW_API_KEY")
	_ = v.BindEnv("vision.api_key", "VISION_API_KEY", "GEMINI_API_KEY")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Vision.MaxAttempts < 1 {
		c.Vision.MaxAttempts = 1
	}
	if c.Media.MaxBytes <= 0 {
		return fmt.Errorf("media.max_bytes must be positive")
	}
	return nil
}
