// Package selfupdate replaces the running solipath binary with the latest release.
package selfupdate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Solipath/Solipath/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultReleaseURL is where release binaries are published
const DefaultReleaseURL = "https://github.com/Solipath/Solipath/releases/download"

var (
	// Test seams for locating the running binary.
	osExecutable = os.Executable
	evalSymlinks = filepath.EvalSymlinks
)

// Downloader saves a URL into a directory and returns the saved path
type Downloader interface {
	DownloadToDir(ctx context.Context, url, dir string) (string, error)
}

// Updater swaps the current binary for a freshly downloaded one.
type Updater struct {
	downloader Downloader
	releaseURL string
	platform   models.Platform
}

// NewUpdater creates an Updater for the given platform
func NewUpdater(downloader Downloader, releaseURL string, platform models.Platform) *Updater {
	return &Updater{
		downloader: downloader,
		releaseURL: releaseURL,
		platform:   platform,
	}
}

// ReleaseURL returns <release>/latest-<os>_<arch>/solipath[.exe]
func (u *Updater) ReleaseURL() string {
	return fmt.Sprintf("%s/latest-%s_%s/solipath%s", u.releaseURL, u.platform.OS, u.platform.Arch, u.extension())
}

func (u *Updater) extension() string {
	if u.platform.OS == "windows" {
		return ".exe"
	}
	return ""
}

// Update moves the running binary aside as solipathold, downloads the new
// one in its place and restores the old binary if anything fails.
func (u *Updater) Update(ctx context.Context) error {
	execPath, err := resolveExecPath()
	if err != nil {
		return err
	}
	return u.replace(ctx, execPath)
}

func (u *Updater) replace(ctx context.Context, execPath string) error {
	dir := filepath.Dir(execPath)
	backup := filepath.Join(dir, "solipathold"+u.extension())

	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove previous backup %s: %w", backup, err)
	}

	if err := os.Rename(execPath, backup); err != nil {
		return fmt.Errorf("failed to move current executable, it may be in use or you may lack permission: %w", err)
	}

	if err := u.install(ctx, dir, execPath); err != nil {
		logrus.Warn("Failed to download solipath, moving executable back to original location")
		if rbErr := os.Rename(backup, execPath); rbErr != nil {
			return fmt.Errorf("%w (restoring %s also failed: %v)", err, execPath, rbErr)
		}
		return err
	}

	logrus.Infof("Updated %s", execPath)
	return nil
}

func (u *Updater) install(ctx context.Context, dir, execPath string) error {
	staging, err := os.MkdirTemp(dir, ".solipath-update-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	saved, err := u.downloader.DownloadToDir(ctx, u.ReleaseURL(), staging)
	if err != nil {
		return err
	}

	if err := os.Rename(saved, execPath); err != nil {
		return err
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(execPath, 0775); err != nil {
			os.Remove(execPath)
			return err
		}
	}
	return nil
}

// resolveExecPath returns the absolute, symlink-resolved path to the running binary.
func resolveExecPath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}

	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}

	return resolved, nil
}
