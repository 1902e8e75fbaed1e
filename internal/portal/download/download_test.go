package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/photoportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("content of " + r.URL.Path))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNew_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")

	d, err := New(dir, nil, logging.Nop{})
	require.NoError(t, err)
	assert.Equal(t, dir, d.Dir())

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestDownloader_Download(t *testing.T) {
	ts := newServer(t)
	d, err := New(t.TempDir(), ts.Client(), logging.Nop{})
	require.NoError(t, err)

	p, err := d.Download(context.Background(), ts.URL+"/c-1/dawn.png", "Dawn.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.Dir(), "Dawn.png"), p)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "content of /c-1/dawn.png", string(got))

	// The same name again does not overwrite.
	p2, err := d.Download(context.Background(), ts.URL+"/c-1/dawn.png", "Dawn.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.Dir(), "Dawn (1).png"), p2)
}

func TestDownloader_DownloadError(t *testing.T) {
	ts := newServer(t)
	d, err := New(t.TempDir(), ts.Client(), logging.Nop{})
	require.NoError(t, err)

	_, err = d.Download(context.Background(), ts.URL+"/missing.jpg", "missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(d.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloader_SaveSanitises(t *testing.T) {
	d, err := New(t.TempDir(), nil, logging.Nop{})
	require.NoError(t, err)

	p, err := d.Save("../escape.jpg", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, d.Dir(), filepath.Dir(p))
	assert.Equal(t, "_escape.jpg", filepath.Base(p))
}
