package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	home     string
	depsFile string
	srv      *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/greeter/1.0/install_instructions.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"environment_variables": [
				{"name": "GREETING", "value": "hello"},
				{"name": "PATH", "relative_path": "greeter-1.0/bin"}
			]
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	depsFile := filepath.Join(dir, "solipath.json")
	require.NoError(t, os.WriteFile(depsFile, []byte(`[
		{"name": "greeter", "version": "1.0"},
		{"name": "elsewhere", "version": "2.0", "platform_filters": [{"os": "plan9"}]}
	]`), 0644))

	home := filepath.Join(dir, "home")
	t.Setenv("SOLIPATH_HOME", home)
	t.Setenv("SOLIPATH_RETRY_BACKOFF", "1ms")

	return &testEnv{home: home, depsFile: depsFile, srv: srv}
}

func (e *testEnv) flags() []string {
	return []string{"--file", e.depsFile, "--instructions-url", e.srv.URL}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInstall_PrintsVariables(t *testing.T) {
	e := newTestEnv(t)

	out, err := execute(t, append([]string{"install"}, e.flags()...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "GREETING=hello\n")
	assert.Contains(t, out, "PATH="+filepath.Join(e.home, "greeter", "downloads", "greeter-1.0", "bin"))
	assert.FileExists(t, filepath.Join(e.home, "greeter", "1.0", "install_instructions.json"))
	assert.NoDirExists(t, filepath.Join(e.home, "elsewhere"))
}

func TestRoot_RunsCommandAndPropagatesExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	e := newTestEnv(t)

	args := append(e.flags(), "sh", "-c", `echo "$GREETING"; exit 3`)
	out, err := execute(t, args...)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "hello\n", out)
}

func TestRoot_CommandFlagsAreNotParsed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	e := newTestEnv(t)

	args := append(e.flags(), "sh", "-c", `echo "$1"`, "sh", "--verbose")
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Equal(t, "--verbose\n", out)
}

func TestRoot_NoCommand(t *testing.T) {
	e := newTestEnv(t)

	_, err := execute(t, e.flags()...)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNoCommand)
	assert.True(t, models.IsType(err, models.ErrExec))
}

func TestRoot_MissingDependencyFile(t *testing.T) {
	newTestEnv(t)

	_, err := execute(t, "--file", filepath.Join(t.TempDir(), "absent.json"), "true")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))
}

func TestRoot_InvalidConfiguration(t *testing.T) {
	e := newTestEnv(t)
	t.Setenv("SOLIPATH_DOWNLOAD_ATTEMPTS", "0")

	_, err := execute(t, append([]string{"install"}, e.flags()...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attempts must be at least 1")
}

func TestUpdate_BothSpellings(t *testing.T) {
	newTestEnv(t)
	t.Setenv("SOLIPATH_RELEASE_URL", "https://releases.example.com/download")

	var urls []string
	orig := selfUpdate
	selfUpdate = func(ctx context.Context, u *selfupdate.Updater) error {
		urls = append(urls, u.ReleaseURL())
		return nil
	}
	t.Cleanup(func() { selfUpdate = orig })

	_, err := execute(t, "update")
	require.NoError(t, err)
	_, err = execute(t, "--update")
	require.NoError(t, err)

	require.Len(t, urls, 2)
	assert.Equal(t, urls[0], urls[1])
	assert.Contains(t, urls[0], "https://releases.example.com/download/latest-")
}

func TestVerifyLinks(t *testing.T) {
	newTestEnv(t)

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.zip" {
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(files.Close)

	checkout := t.TempDir()
	doc := filepath.Join(checkout, "tool", "1.0", "install_instructions.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(doc), 0755))
	require.NoError(t, os.WriteFile(doc, []byte(`{"downloads": [{"url": "`+files.URL+`/tool.zip", "destination_directory": "tool"}]}`), 0644))

	_, err := execute(t, "verify-links", checkout)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(doc, []byte(`{"downloads": [{"url": "`+files.URL+`/missing.zip", "destination_directory": "tool"}]}`), 0644))
	_, err = execute(t, "verify-links", checkout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing.zip")
}
