package downloader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/logger"
	"tiktoksync/pkg/storage"
)

// Downloader fetches a post's media into a scratch file
type Downloader struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// New creates a downloader. referer is sent with every fetch since the
// media CDN refuses hotlinked requests without one.
func New(timeout time.Duration, userAgent, referer string, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}

	headers := map[string]string{
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	if referer != "" {
		headers["Referer"] = referer
	}

	return &Downloader{
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
		logger:     log.WithField("component", "downloader"),
	}
}

// Download fetches mediaSrc and replaces the scratch file with the body.
// It returns the number of bytes written.
func (d *Downloader) Download(ctx context.Context, mediaSrc string, dst *storage.Scratch) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaSrc, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrorTypeDownload, err, "invalid media url")
	}
	for key, value := range d.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.ErrorWithFields("Media request failed", map[string]interface{}{
			"url":   mediaSrc,
			"error": err.Error(),
		})
		return 0, errors.Wrap(errors.ErrorTypeDownload, err, "network error")
	}
	defer resp.Body.Close()

	logger.LogRequest(d.logger, req.Method, mediaSrc, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.New(errors.ErrorTypeDownload,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode)).WithCode(resp.StatusCode)
	}

	body := bufio.NewReader(resp.Body)
	if _, err := body.Peek(1); err != nil {
		if err == io.EOF {
			return 0, errors.New(errors.ErrorTypeDownload, "media response was empty")
		}
		return 0, errors.Wrap(errors.ErrorTypeDownload, err, "failed to read media")
	}

	size, err := dst.Save(body)
	if err != nil {
		return 0, errors.Wrap(errors.ErrorTypeDownload, err, "failed to write media")
	}

	d.logger.InfoWithFields("Media downloaded", map[string]interface{}{
		"path":  dst.Path(),
		"bytes": size,
	})
	return size, nil
}
