// Package config loads settings from flags, the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PRESSROOM_API_URL.
const EnvPrefix = "PRESSROOM"

// Keys.
const (
	KeyAPIURL        = "api_url"
	KeySiteURL       = "site_url"
	KeySiteName      = "site_name"
	KeyListen        = "listen"
	KeyStorageDriver = "storage.driver"
	KeyStorageDSN    = "storage.dsn"
	KeySessionSecret = "session_secret"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyHTTPTimeout   = "http_timeout"
)

// Config holds the resolved settings.
type Config struct {
	APIURL        string
	SiteURL       string
	SiteName      string
	Listen        string
	StorageDriver string
	StorageDSN    string
	SessionSecret string
	LogLevel      string
	LogFormat     string
	// HTTPTimeout bounds each API request; zero means no timeout.
	HTTPTimeout time.Duration
}

var (
	ErrNoAPIURL        = errors.New("api_url is not set (use --api-url or PRESSROOM_API_URL)")
	ErrNoSessionSecret = errors.New("session_secret is not set (use PRESSROOM_SESSION_SECRET)")
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySiteName, "Pressroom")
	v.SetDefault(KeyListen, ":8080")
	v.SetDefault(KeyStorageDriver, "sqlite")
	v.SetDefault(KeyStorageDSN, "pressroom.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyHTTPTimeout, time.Duration(0))
}

// Load resolves the configuration. A missing .env file is ignored; a
// config file, when named, must exist.
func Load(v *viper.Viper, file string) (Config, error) {
	_ = godotenv.Load()

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		APIURL:        strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		SiteURL:       strings.TrimRight(strings.TrimSpace(v.GetString(KeySiteURL)), "/"),
		SiteName:      v.GetString(KeySiteName),
		Listen:        v.GetString(KeyListen),
		StorageDriver: v.GetString(KeyStorageDriver),
		StorageDSN:    v.GetString(KeyStorageDSN),
		SessionSecret: v.GetString(KeySessionSecret),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
		HTTPTimeout:   v.GetDuration(KeyHTTPTimeout),
	}
	if cfg.HTTPTimeout < 0 {
		return Config{}, fmt.Errorf("%s must not be negative", KeyHTTPTimeout)
	}
	return cfg, nil
}

// RequireAPI reports whether the API base URL is configured.
func (c Config) RequireAPI() error {
	if c.APIURL == "" {
		return ErrNoAPIURL
	}
	return nil
}

// RequireSite checks the settings needed to serve the public site.
func (c Config) RequireSite() error {
	if err := c.RequireAPI(); err != nil {
		return err
	}
	if c.SessionSecret == "" {
		return ErrNoSessionSecret
	}
	return nil
}
