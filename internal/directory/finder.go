// Package directory lays out the local cache of instructions and downloads.
package directory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Solipath/Solipath/internal/models"
)

// DefaultDirName is created in the user's home directory when no base is configured.
const DefaultDirName = "solipath"

// Finder computes cache paths below a base directory
type Finder struct {
	base string
}

// New returns a Finder rooted at base
func New(base string) *Finder {
	return &Finder{base: base}
}

// DefaultBase returns ~/solipath
func DefaultBase() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// VersionDir is <base>/<name>/<version>
func (f *Finder) VersionDir(dep models.Dependency) string {
	return filepath.Join(f.base, dep.Name, dep.Version)
}

// InstructionsPath is where the instruction document of dep is cached.
func (f *Finder) InstructionsPath(dep models.Dependency) string {
	return filepath.Join(f.VersionDir(dep), "install_instructions.json")
}

// TemplatesDir is <base>/<name>/templates
func (f *Finder) TemplatesDir(dep models.Dependency) string {
	return filepath.Join(f.base, dep.Name, "templates")
}

// TemplatePath is where a template document of dep is cached.
func (f *Finder) TemplatePath(dep models.Dependency, template string) string {
	return filepath.Join(f.TemplatesDir(dep), template+".json")
}

// DownloadsDir is shared by every version of a dependency.
func (f *Finder) DownloadsDir(dep models.Dependency) string {
	return filepath.Join(f.base, dep.Name, "downloads")
}

// DownloadPath joins a relative path from an instruction document onto the downloads directory.
func (f *Finder) DownloadPath(dep models.Dependency, rel string) string {
	return filepath.Join(f.DownloadsDir(dep), filepath.FromSlash(rel))
}
