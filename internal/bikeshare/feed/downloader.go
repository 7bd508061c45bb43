package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bikeshare-traffic/internal/common/logger"
)

const progressInterval = 5 * time.Second

// HTTPDownloader fetches trip exports to disk. An export already on disk is
// revalidated with If-Modified-Since and kept when the server answers 304.
type HTTPDownloader struct {
	client *http.Client
	logger logger.Logger
}

func NewHTTPDownloader(logger logger.Logger, timeout time.Duration) *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Download stores url at destPath. The body is staged in a temp file next to
// destPath and renamed on success, so destPath never holds a partial export.
func (d *HTTPDownloader) Download(ctx context.Context, url string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	cached, statErr := os.Stat(destPath)
	if statErr == nil {
		req.Header.Set("If-Modified-Since", cached.ModTime().UTC().Format(http.TimeFormat))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting trip export: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified && statErr == nil:
		d.logger.Info("Trip export unchanged, using cached copy", "dest", destPath)
		return nil
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	d.logger.Info("Downloading trip export", "url", url, "dest", destPath, "size_bytes", resp.ContentLength)

	written, err := d.writeFile(destPath, &progressReader{
		r:      resp.Body,
		total:  resp.ContentLength,
		logger: d.logger,
		last:   time.Now(),
	})
	if err != nil {
		return err
	}

	if modified, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		// the next run revalidates against the server's clock, not ours
		_ = os.Chtimes(destPath, modified, modified)
	}

	d.logger.Info("Download completed", "dest", destPath, "size_bytes", written)
	return nil
}

func (d *HTTPDownloader) writeFile(destPath string, src io.Reader) (int64, error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "trips_download_*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, fmt.Errorf("writing trip export: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return written, fmt.Errorf("moving file to destination: %w", err)
	}
	return written, nil
}

// progressReader logs download progress at most every progressInterval
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	logger logger.Logger
	last   time.Time
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.read += int64(n)
	if p.total > 0 && time.Since(p.last) > progressInterval {
		p.logger.Debug("Download progress",
			"progress_percent", fmt.Sprintf("%.1f", float64(p.read)/float64(p.total)*100),
			"bytes_downloaded", p.read,
			"total_bytes", p.total)
		p.last = time.Now()
	}
	return n, err
}
