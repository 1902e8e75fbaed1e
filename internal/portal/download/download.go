// Package download stands in for the browser's download manager: it fetches
// objects over HTTP and saves them under the downloads directory. Nothing is
// retried.
package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/photoportal/internal/filex"
	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/dmitrijs2005/photoportal/internal/netx"
)

const DefaultTimeout = 60 * time.Second

type Downloader struct {
	dir    string
	client *http.Client
	logger logging.Logger

	// mu serialises picking a free file name and writing it.
	mu sync.Mutex
}

// New creates dir if needed. A nil client gets one with DefaultTimeout.
func New(dir string, client *http.Client, l logging.Logger) (*Downloader, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Downloader{dir: abs, client: client, logger: l.With("module", "download")}, nil
}

func (d *Downloader) Dir() string {
	return d.dir
}

func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	return netx.Get(ctx, d.client, url)
}

// Save writes data under a sanitised, unused variant of name and returns
// the full path.
func (d *Downloader) Save(name string, data []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p := filex.UniquePath(d.dir, filex.SafeName(name))
	if err := os.WriteFile(p, data, 0o640); err != nil {
		return "", fmt.Errorf("save %s: %w", p, err)
	}
	return p, nil
}

// Download fetches url and saves it as name.
func (d *Downloader) Download(ctx context.Context, url, name string) (string, error) {
	data, err := d.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	p, err := d.Save(name, data)
	if err != nil {
		return "", err
	}
	d.logger.Debug(ctx, "Saved download", "path", p, "bytes", len(data))
	return p, nil
}
