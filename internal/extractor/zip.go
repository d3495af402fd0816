package extractor

import (
	"io"
	"os"

	"github.com/Solipath/Solipath/internal/utils"
	"github.com/klauspost/compress/zip"
)

// extractZip keeps directory entries, regular files and symlinks. A symlink
// entry stores its target as the entry content.
func extractZip(source, destDir string) error {
	zr, err := zip.OpenReader(source)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			link, err := readZipEntry(f)
			if err != nil {
				return err
			}
			if err := writeSymlink(string(link), target); err != nil {
				return err
			}
		default:
			if err := writeZipEntry(f, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeZipEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	return utils.WriteStream(target, rc, perm)
}
