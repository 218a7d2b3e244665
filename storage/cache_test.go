package storage

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsurePathDownloadsOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		io.WriteString(w, "a\tb\n")
	}))
	defer srv.Close()

	cache := NewCache(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	p, err := cache.EnsurePath(ctx, "intact", srv.URL+"/files/intact.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache.Dir, "intact", "intact.txt"), p)

	again, err := cache.EnsurePath(ctx, "intact", srv.URL+"/files/intact.txt")
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n", string(data))
}

func TestEnsurePathBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cache := NewCache(t.TempDir(), zap.NewNop())
	_, err := cache.EnsurePath(context.Background(), "biogrid", srv.URL+"/missing.zip")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(cache.Dir, "biogrid", "missing.zip"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpenDatasetZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("README")
	require.NoError(t, err)
	io.WriteString(w, "ignore me")
	w, err = zw.Create("BIOGRID-ALL-1.0.mitab.txt")
	require.NoError(t, err)
	io.WriteString(w, "rows")
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rc, err := OpenDataset(p, "")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	assert.Equal(t, "rows", string(data))

	rc, err = OpenDataset(p, "README")
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "ignore me", string(data))

	_, err = OpenDataset(p, "nope.txt")
	assert.Error(t, err)
}

func TestOpenDatasetGzip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.tsv.gz")
	f, err := os.Create(p)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	io.WriteString(gz, "x\ty\n")
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	rc, err := OpenDataset(p, "")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "x\ty\n", string(data))
}
