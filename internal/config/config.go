// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
)

// QR image sources.
const (
	QRModeRemote = "remote"
	QRModeLocal  = "local"
	QRModeNone   = "none"
)

// Slip scripts.
const (
	ScriptLatin    = "latin"
	ScriptCyrillic = "cyrillic"
)

// Config is the service configuration.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"60s"`

	DatabaseURL string `env:"DATABASE_URL"`
	BuildingID  int64  `env:"BUILDING_ID" envDefault:"1"`

	JWTSecret    string `env:"AUTH_JWT_SECRET"`
	AuthDisabled bool   `env:"AUTH_DISABLED"`

	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"uplatnice"`

	QRMode          string        `env:"QR_MODE"           envDefault:"remote"`
	QRBaseURL       string        `env:"QR_BASE_URL"       envDefault:"https://nbs.rs/QRcode/api/qr/v1/gen"`
	QRLanguage      string        `env:"QR_LANG"`
	QRTimeout       time.Duration `env:"QR_TIMEOUT"        envDefault:"10s"`
	QRSize          int           `env:"QR_SIZE"           envDefault:"300"`
	QRConcurrency   int           `env:"QR_CONCURRENCY"    envDefault:"8"`
	QRStrictPayload bool          `env:"QR_STRICT_PAYLOAD"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	QRCacheTTL    time.Duration `env:"QR_CACHE_TTL" envDefault:"720h"`

	FontDir        string `env:"FONT_DIR"`
	SlipScript     string `env:"SLIP_SCRIPT"      envDefault:"latin"`
	SlipTextConfig string `env:"SLIP_TEXT_CONFIG"`

	Text layout.Text `env:"-"`
}

// Load reads the environment, applies the slip text overlay and validates.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse env: %w", err)
	}
	text, err := LoadText(cfg.SlipScript, cfg.SlipTextConfig)
	if err != nil {
		return cfg, err
	}
	cfg.Text = text
	return cfg, cfg.Validate()
}

// Validate checks values the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" && !c.AuthDisabled {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required unless AUTH_DISABLED=true"))
	}
	switch c.QRMode {
	case QRModeRemote, QRModeLocal, QRModeNone:
	default:
		errs = append(errs, fmt.Errorf("QR_MODE %q: want remote, local or none", c.QRMode))
	}
	if c.QRSize <= 0 {
		errs = append(errs, fmt.Errorf("QR_SIZE %d must be positive", c.QRSize))
	}
	if c.QRConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("QR_CONCURRENCY %d must be positive", c.QRConcurrency))
	}
	if c.BuildingID <= 0 {
		errs = append(errs, fmt.Errorf("BUILDING_ID %d must be positive", c.BuildingID))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LoadText picks the built-in wording for script and overlays the YAML file
// at path, if any. Keys missing from the file keep their built-in value.
func LoadText(script, path string) (layout.Text, error) {
	var base layout.Text
	switch strings.ToLower(strings.TrimSpace(script)) {
	case "", ScriptLatin:
		base = layout.DefaultText()
	case ScriptCyrillic:
		base = layout.CyrillicText()
	default:
		return layout.Text{}, fmt.Errorf("config: SLIP_SCRIPT %q: want latin or cyrillic", script)
	}
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Text{}, fmt.Errorf("config: slip text: %w", err)
	}
	var overlay layout.Text
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return layout.Text{}, fmt.Errorf("config: slip text %s: %w", path, err)
	}
	return overlay.Merge(base), nil
}
