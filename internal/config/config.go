// Package config loads server settings from flags, environment, an optional
// config file and defaults, in that order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"slopgames/internal/genai"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	Port           string
	APIKey         string
	APIBaseURL     string
	TextModel      string
	ImageModel     string
	DataDir        string
	CatalogFile    string
	GamesDir       string
	ThumbnailsDir  string
	TemplatesDir   string
	StaticDir      string
	RequestTimeout time.Duration
	CSRF           bool
	Log            LogConfig
}

// LogConfig controls the slog handler and optional file rotation.
type LogConfig struct {
	Level      string // debug|info|warn|error
	Format     string // text|json
	File       string // empty means stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// GenAI returns the client configuration for the AI provider.
func (c Config) GenAI() genai.Config {
	return genai.Config{
		APIKey:     c.APIKey,
		BaseURL:    c.APIBaseURL,
		TextModel:  c.TextModel,
		ImageModel: c.ImageModel,
		Timeout:    c.RequestTimeout,
	}
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", "3000")
	v.SetDefault("api_base_url", genai.DefaultBaseURL)
	v.SetDefault("text_model", genai.DefaultTextModel)
	v.SetDefault("image_model", genai.DefaultImageModel)
	v.SetDefault("data_dir", "data")
	v.SetDefault("templates_dir", filepath.Join("web", "templates"))
	v.SetDefault("static_dir", filepath.Join("web", "static"))
	v.SetDefault("request_timeout", genai.DefaultTimeout)
	v.SetDefault("csrf", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)

	v.SetEnvPrefix("SLOPGAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional names used by hosting platforms and the Google SDKs.
	_ = v.BindEnv("port", "SLOPGAMES_PORT", "PORT")
	_ = v.BindEnv("api_key", "SLOPGAMES_API_KEY", "GOOGLE_API_KEY")
	return v
}

// BindFlags lets command-line flags override every other source.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range map[string]string{"port": "port", "data_dir": "data-dir", "log.level": "log-level"} {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return nil
}

// Load reads the optional config file and resolves the final Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	dataDir := v.GetString("data_dir")
	cfg := Config{
		Port:           v.GetString("port"),
		APIKey:         v.GetString("api_key"),
		APIBaseURL:     v.GetString("api_base_url"),
		TextModel:      v.GetString("text_model"),
		ImageModel:     v.GetString("image_model"),
		DataDir:        dataDir,
		CatalogFile:    stringOr(v, "catalog_file", filepath.Join(dataDir, "games.json")),
		GamesDir:       stringOr(v, "games_dir", filepath.Join(dataDir, "games")),
		ThumbnailsDir:  stringOr(v, "thumbnails_dir", filepath.Join(dataDir, "thumbnails")),
		TemplatesDir:   v.GetString("templates_dir"),
		StaticDir:      v.GetString("static_dir"),
		RequestTimeout: v.GetDuration("request_timeout"),
		CSRF:           v.GetBool("csrf"),
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
		},
	}
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("port cannot be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	return cfg, nil
}

// stringOr returns key's value, or def when it is unset. Used for paths that
// default relative to data_dir.
func stringOr(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}
