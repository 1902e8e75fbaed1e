package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/photoportal/internal/flagx"
	"github.com/dmitrijs2005/photoportal/internal/timex"
)

// JSONConfig is the on-disk shape of the portal config file.
type JSONConfig struct {
	GatewayEndpoint         string         `json:"gateway_endpoint"`
	GatewayKey              string         `json:"gateway_key"`
	DownloadsDir            string         `json:"downloads_dir"`
	CollectionDownloadDelay timex.Duration `json:"collection_download_delay"`
	SignedURLTTL            timex.Duration `json:"signed_url_ttl"`
	RequestTimeout          timex.Duration `json:"request_timeout"`
	GalleryLimit            int            `json:"gallery_limit"`
	WatermarkText           string         `json:"watermark_text"`
	Debug                   *bool          `json:"debug"`
}

func parseJSON(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.GatewayEndpoint != "" {
		cfg.GatewayEndpoint = jc.GatewayEndpoint
	}
	if jc.GatewayKey != "" {
		cfg.GatewayKey = jc.GatewayKey
	}
	if jc.DownloadsDir != "" {
		cfg.DownloadsDir = jc.DownloadsDir
	}
	if jc.CollectionDownloadDelay.Duration > 0 {
		cfg.CollectionDownloadDelay = jc.CollectionDownloadDelay.Duration
	}
	if jc.SignedURLTTL.Duration > 0 {
		cfg.SignedURLTTL = jc.SignedURLTTL.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.GalleryLimit > 0 {
		cfg.GalleryLimit = jc.GalleryLimit
	}
	if jc.WatermarkText != "" {
		cfg.WatermarkText = jc.WatermarkText
	}
	if jc.Debug != nil {
		cfg.Debug = *jc.Debug
	}
	return nil
}
