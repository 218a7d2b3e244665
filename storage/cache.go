package storage

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

var httpClient = &http.Client{Timeout: 30 * time.Minute}

// Cache downloads dataset files once into Dir/<module>/<file name>.
type Cache struct {
	Dir    string
	Client *http.Client
	Logger *zap.Logger
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string, logger *zap.Logger) *Cache {
	return &Cache{Dir: dir, Client: httpClient, Logger: logger}
}

// EnsurePath returns the local path of rawURL for module, downloading it if absent.
func (c *Cache) EnsurePath(ctx context.Context, module, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}

	dir := filepath.Join(c.Dir, module)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	target := filepath.Join(dir, name)
	if _, err := os.Stat(target); err == nil {
		c.Logger.Debug("Using cached file", zap.String("module", module), zap.String("path", target))
		return target, nil
	}

	log := c.Logger.With(zap.String("module", module), zap.String("url", rawURL))
	log.Info("Downloading dataset")
	start := time.Now()

	// FTP mirrors of EBI are also served over HTTPS.
	if u.Scheme == "ftp" {
		u.Scheme = "https"
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	client := c.Client
	if client == nil {
		client = httpClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: bad status: %s", rawURL, resp.Status)
	}

	// Write to a temp file first so an interrupted download is never mistaken for a cached one.
	tmp, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", err
	}
	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	log.Info("Download finished", zap.Int64("bytes", n), zap.Duration("took", time.Since(start)))
	return target, nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenDataset opens a possibly compressed dataset file. For zip archives member selects
// the entry; an empty member picks the first regular file ending in .txt, .tsv or .mitab.
func OpenDataset(p, member string) (io.ReadCloser, error) {
	lower := strings.ToLower(p)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		zr, err := zip.OpenReader(p)
		if err != nil {
			return nil, err
		}
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			if member != "" && f.Name != member && path.Base(f.Name) != member {
				continue
			}
			if member == "" && !isTabular(f.Name) {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				zr.Close()
				return nil, err
			}
			return &multiCloser{Reader: rc, closers: []io.Closer{zr, rc}}, nil
		}
		zr.Close()
		return nil, fmt.Errorf("no member %q in %s", member, p)
	case strings.HasSuffix(lower, ".gz"):
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &multiCloser{Reader: gz, closers: []io.Closer{f, gz}}, nil
	default:
		return os.Open(p)
	}
}

func isTabular(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".mitab")
}
