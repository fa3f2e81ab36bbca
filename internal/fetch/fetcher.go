// ABOUTME: Clip fetcher for remote memory recordings
// ABOUTME: Downloads http(s) locators into a local cache and passes local paths through
package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/memorylane/memorylane-go/pkg/audio/output"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single download
const DefaultTimeout = 30 * time.Second

// Config holds fetcher configuration
type Config struct {
	CacheDir string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Fetcher resolves clip locators to local files
type Fetcher struct {
	cacheDir string
	client   *resty.Client
	log      *zap.Logger
	group    singleflight.Group
}

// New creates a fetcher and its cache directory
func New(config Config) (*Fetcher, error) {
	if config.CacheDir == "" {
		config.CacheDir = filepath.Join(os.TempDir(), "memorylane-cache")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Fetcher{
		cacheDir: config.CacheDir,
		client:   resty.New().SetTimeout(config.Timeout),
		log:      config.Logger.Named("fetch"),
	}, nil
}

// IsRemote reports whether locator needs downloading
func IsRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}

// Resolve returns a local path for locator, downloading it once if remote
func (f *Fetcher) Resolve(ctx context.Context, locator string) (string, error) {
	if !IsRemote(locator) {
		return output.FileResolver{}.Resolve(ctx, locator)
	}

	path, err, _ := f.group.Do(locator, func() (any, error) {
		return f.download(ctx, locator)
	})
	if err != nil {
		return "", err
	}
	return path.(string), nil
}

// CachePath is where url is stored once downloaded
func (f *Fetcher) CachePath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, fmt.Sprintf("%x%s", hash[:8], getExtension(url)))
}

func (f *Fetcher) download(ctx context.Context, url string) (string, error) {
	cachePath := f.CachePath(url)

	if _, err := os.Stat(cachePath); err == nil {
		f.log.Debug("cache hit", zap.String("path", cachePath))
		return cachePath, nil
	}

	f.log.Info("downloading clip", zap.String("url", url))
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download clip: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("clip download failed: HTTP %d", resp.StatusCode())
	}

	// write under a temp name so a partial download never looks cached
	tmp, err := os.CreateTemp(f.cacheDir, "partial-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save clip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save clip: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to save clip: %w", err)
	}

	f.log.Info("clip saved", zap.String("path", cachePath))
	return cachePath, nil
}

// getExtension extracts the file extension from a URL
func getExtension(url string) string {
	url = strings.Split(url, "?")[0]

	ext := filepath.Ext(url)
	if ext == "" {
		ext = ".mp3"
	}
	return strings.ToLower(ext)
}

// Cleanup removes the cache directory
func (f *Fetcher) Cleanup() error {
	return os.RemoveAll(f.cacheDir)
}

var _ output.Resolver = (*Fetcher)(nil)
