// Package extractor unpacks downloaded artifacts into a destination directory.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Solipath/Solipath/internal/utils"
	"github.com/sirupsen/logrus"
)

// Format represents an artifact layout, detected from the file name
type Format int

const (
	FormatPlain Format = iota
	FormatZip
	FormatTarGz
	FormatTarXz
	FormatTarBz2
	FormatSevenZip
	FormatTarZst
	FormatTar
	FormatRpm
	FormatDmg
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	case FormatTarXz:
		return "tar.xz"
	case FormatTarBz2:
		return "tar.bz2"
	case FormatSevenZip:
		return "7z"
	case FormatTarZst:
		return "tar.zst"
	case FormatTar:
		return "tar"
	case FormatRpm:
		return "rpm"
	case FormatDmg:
		return "dmg"
	default:
		return "plain"
	}
}

// suffixes are checked in order; the first match wins.
var suffixes = []struct {
	suffix string
	format Format
}{
	{".zip", FormatZip},
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".tar.xz", FormatTarXz},
	{".tar.bz2", FormatTarBz2},
	{".7z", FormatSevenZip},
	{".tar.zst", FormatTarZst},
	{".tar", FormatTar},
	{".rpm", FormatRpm},
	{".dmg", FormatDmg},
}

// DetectFormat determines the format of an artifact from its file name
func DetectFormat(name string) Format {
	base := filepath.Base(name)
	for _, s := range suffixes {
		if strings.HasSuffix(base, s.suffix) {
			return s.format
		}
	}
	return FormatPlain
}

// Extractor unpacks artifacts by file-name suffix
type Extractor struct{}

// New returns an Extractor
func New() *Extractor {
	return &Extractor{}
}

// Extract unpacks source into destDir, creating destDir first. Files with an
// unrecognised suffix are copied into destDir under their own name.
func (e *Extractor) Extract(source, destDir string) error {
	if err := utils.EnsureDir(destDir); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	format := DetectFormat(source)
	logrus.Debugf("Extracting %s (%s) into %s", filepath.Base(source), format, destDir)

	var err error
	switch format {
	case FormatZip:
		err = extractZip(source, destDir)
	case FormatTarGz, FormatTarXz, FormatTarBz2, FormatTarZst, FormatTar:
		err = extractTarFile(source, destDir, format)
	case FormatSevenZip:
		err = extractSevenZip(source, destDir)
	case FormatRpm:
		err = extractRpm(source, destDir)
	case FormatDmg:
		err = extractDmg(source, destDir)
	default:
		err = utils.CopyFile(source, filepath.Join(destDir, filepath.Base(source)))
	}
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", filepath.Base(source), err)
	}
	return nil
}

// safeJoin joins an archive entry name onto dest, refusing names that escape
// it either lexically or through a symlink extracted earlier.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !within(dest, target) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	if target == filepath.Clean(dest) {
		return target, nil
	}

	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return "", err
	}
	parent, err := resolveExisting(filepath.Dir(target))
	if err != nil {
		return "", fmt.Errorf("entry %q: %w", name, err)
	}
	if !within(root, parent) {
		return "", fmt.Errorf("entry %q escapes destination through a symlink", name)
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting evaluates symlinks in the longest prefix of path that
// exists and appends the missing remainder unchanged.
func resolveExisting(path string) (string, error) {
	missing := ""
	for {
		if _, err := os.Lstat(path); err == nil {
			break
		}
		parent := filepath.Dir(path)
		if parent == path {
			break
		}
		missing = filepath.Join(filepath.Base(path), missing)
		path = parent
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, missing), nil
}
