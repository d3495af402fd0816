package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Solipath/Solipath/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDownloader(opts ...Option) *Downloader {
	return New(append([]Option{WithBackoff(time.Millisecond)}, opts...)...)
}

func TestDownloadFile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "solipath", r.Header.Get("User-Agent"))
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "a", "b", "file.json")
	require.NoError(t, newTestDownloader().DownloadFile(context.Background(), srv.URL+"/file.json", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	parts, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.part"))
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestDownloadFile_ConcurrentSamePath(t *testing.T) {
	payload := strings.Repeat("0123456789", 10000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < len(payload); i += 1000 {
			w.Write([]byte(payload[i : i+1000]))
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "tool.zip")
	d := newTestDownloader(WithAttempts(1))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = d.DownloadFile(context.Background(), srv.URL, path)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	parts, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.part"))
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestDownloadFile_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, newTestDownloader().DownloadFile(context.Background(), srv.URL, path))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownloadFile_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	url := srv.URL + "/broken.zip"
	err := newTestDownloader(WithAttempts(3)).DownloadFile(context.Background(), url, filepath.Join(t.TempDir(), "f"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), url)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownloadFile_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "missing.json")
	err := newTestDownloader().DownloadFile(context.Background(), srv.URL, path)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadFile_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestDownloader().DownloadFile(ctx, srv.URL, filepath.Join(t.TempDir(), "f"))
	assert.Error(t, err)
}

func TestDownloadToDir_Naming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/attachment" {
			w.Header().Set("Content-Disposition", `attachment; filename="jdk-21.tar.gz"`)
		}
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	d := newTestDownloader()
	dir := t.TempDir()

	saved, err := d.DownloadToDir(context.Background(), srv.URL+"/attachment", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jdk-21.tar.gz"), saved)

	saved, err = d.DownloadToDir(context.Background(), srv.URL+"/dist/node-v20.zip?token=abc", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "node-v20.zip"), saved)
}

func TestHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, http.MethodHead, r.Method)
		case "/no-head":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := newTestDownloader()
	assert.NoError(t, d.Head(context.Background(), srv.URL+"/ok"))
	assert.NoError(t, d.Head(context.Background(), srv.URL+"/no-head"))
	assert.Error(t, d.Head(context.Background(), srv.URL+"/gone"))
}
