package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/flagx"
)

// parseFlags overlays command-line flags onto cfg.
//
//	-a string   gateway endpoint (host:port)
//	-k string   gateway public key
//	-o string   downloads directory
//	-w int      delay between collection download items, milliseconds
//	-l int      signed link lifetime, seconds
//	-t int      per-request timeout, seconds
//	-n int      gallery page size
//	-m string   watermark text
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-o", "-w", "-l", "-t", "-n", "-m"})

	fs := flag.NewFlagSet("portal", flag.ContinueOnError)

	fs.StringVar(&cfg.GatewayEndpoint, "a", cfg.GatewayEndpoint, "gateway endpoint")
	fs.StringVar(&cfg.GatewayKey, "k", cfg.GatewayKey, "gateway public key")
	fs.StringVar(&cfg.DownloadsDir, "o", cfg.DownloadsDir, "downloads directory")
	delay := fs.Int("w", int(cfg.CollectionDownloadDelay.Milliseconds()), "collection download delay (in milliseconds)")
	ttl := fs.Int("l", int(cfg.SignedURLTTL.Seconds()), "signed link lifetime (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.GalleryLimit, "n", cfg.GalleryLimit, "gallery page size")
	fs.StringVar(&cfg.WatermarkText, "m", cfg.WatermarkText, "watermark text")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.CollectionDownloadDelay = time.Duration(*delay) * time.Millisecond
	cfg.SignedURLTTL = time.Duration(*ttl) * time.Second
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
