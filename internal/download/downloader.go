// Package download fetches remote artifacts with retry and caches them on disk.
package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/utils"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = 2 * time.Second
	DefaultTimeout  = 10 * time.Minute
)

// Downloader performs HTTP transfers, retrying transient failures with backoff.
type Downloader struct {
	client    *http.Client
	attempts  int
	backoff   time.Duration
	userAgent string
}

// Option configures a Downloader
type Option func(*Downloader)

// WithAttempts sets how many times a request is tried in total
func WithAttempts(n int) Option {
	return func(d *Downloader) {
		if n > 0 {
			d.attempts = n
		}
	}
}

// WithBackoff sets the wait before the first retry; later waits grow from it.
func WithBackoff(b time.Duration) Option {
	return func(d *Downloader) { d.backoff = b }
}

// WithTimeout bounds a single request including its body
func WithTimeout(t time.Duration) Option {
	return func(d *Downloader) { d.client.Timeout = t }
}

// New creates a Downloader
func New(opts ...Option) *Downloader {
	d := &Downloader{
		client:    &http.Client{Timeout: DefaultTimeout},
		attempts:  DefaultAttempts,
		backoff:   DefaultBackoff,
		userAgent: "solipath",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DownloadFile saves the body of url at path. The file only appears once the
// transfer is complete.
func (d *Downloader) DownloadFile(ctx context.Context, url, path string) error {
	logrus.Infof("Downloading %s", url)
	return d.retry(ctx, url, func() error {
		resp, err := d.get(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		return writeAtomically(path, resp)
	})
}

// DownloadToDir saves the body of url inside dir, naming the file after the
// Content-Disposition header or the last URL segment. It returns the saved path.
func (d *Downloader) DownloadToDir(ctx context.Context, url, dir string) (string, error) {
	logrus.Infof("Downloading %s", url)
	var saved string
	err := d.retry(ctx, url, func() error {
		resp, err := d.get(ctx, url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		path := filepath.Join(dir, FileNameFromResponse(resp))
		if err := writeAtomically(path, resp); err != nil {
			return err
		}
		saved = path
		return nil
	})
	return saved, err
}

// Head checks that url answers successfully without transferring its body.
func (d *Downloader) Head(ctx context.Context, url string) error {
	return d.retry(ctx, url, func() error {
		resp, err := d.do(ctx, http.MethodHead, url)
		if err != nil {
			return err
		}
		resp.Body.Close()

		// Some hosts refuse HEAD; fall back to a GET that is closed right away.
		if resp.StatusCode == http.StatusMethodNotAllowed {
			resp, err = d.get(ctx, url)
			if err != nil {
				return err
			}
			resp.Body.Close()
		}
		return nil
	})
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	return d.do(ctx, http.MethodGet, url)
}

func (d *Downloader) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkStatus marks client errors as permanent so they are not retried.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if method := resp.Request.Method; method == http.MethodHead && resp.StatusCode == http.StatusMethodNotAllowed {
		return nil
	}

	err := fmt.Errorf("unexpected status %s", resp.Status)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return backoff.Permanent(fmt.Errorf("%w: %v", models.ErrNotFound, err))
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return err
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(err)
	default:
		return err
	}
}

func (d *Downloader) retry(ctx context.Context, url string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.backoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.2
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(d.attempts-1)), ctx)

	notify := func(err error, wait time.Duration) {
		logrus.Warnf("Error downloading %s, trying again in %s: %v", url, wait.Round(time.Millisecond), err)
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	return nil
}

// writeAtomically streams the body next to path and renames it into place.
// Each call gets its own partial file, so concurrent fetches of one path
// never interleave writes.
func writeAtomically(path string, resp *http.Response) error {
	partial := path + "." + uuid.NewString() + ".part"
	if err := utils.WriteStream(partial, resp.Body, 0644); err != nil {
		os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, path); err != nil {
		os.Remove(partial)
		return err
	}
	return nil
}
