// Package config loads portal settings: defaults, then .env and PORTAL_*
// variables, then an optional JSON file, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/common"
	"github.com/dmitrijs2005/photoportal/internal/flagx"
)

// EnvPrefix prefixes every environment variable read by the portal.
const EnvPrefix = "PORTAL"

// ErrGatewayNotConfigured is returned when the gateway endpoint or public
// key is missing. The portal cannot start without both.
var ErrGatewayNotConfigured = errors.New("gateway endpoint and public key are required")

// Config holds runtime settings for the portal.
type Config struct {
	GatewayEndpoint         string        `envconfig:"GATEWAY_ENDPOINT"`
	GatewayKey              string        `envconfig:"GATEWAY_KEY"`
	DownloadsDir            string        `envconfig:"DOWNLOADS_DIR"`
	CollectionDownloadDelay time.Duration `envconfig:"COLLECTION_DOWNLOAD_DELAY"`
	SignedURLTTL            time.Duration `envconfig:"SIGNED_URL_TTL"`
	RequestTimeout          time.Duration `envconfig:"REQUEST_TIMEOUT"`
	GalleryLimit            int           `envconfig:"GALLERY_LIMIT"`
	WatermarkText           string        `envconfig:"WATERMARK_TEXT"`
	Debug                   bool          `envconfig:"DEBUG"`
}

// LoadDefaults fills everything except the gateway endpoint and key.
func (c *Config) LoadDefaults() {
	c.DownloadsDir = "downloads"
	c.CollectionDownloadDelay = 100 * time.Millisecond
	c.SignedURLTTL = common.DefaultSignedURLTTL
	c.RequestTimeout = 15 * time.Second
	c.GalleryLimit = 24
	c.WatermarkText = "© Portfolio"
}

// Validate reports ErrGatewayNotConfigured when a required value is empty.
func (c *Config) Validate() error {
	if c.GatewayEndpoint == "" || c.GatewayKey == "" {
		return ErrGatewayNotConfigured
	}
	return nil
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if _, err := flagx.LoadDotenv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := flagx.ParseEnv(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := parseJSON(cfg); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
