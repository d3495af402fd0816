package extractor

import (
	"io"
	"os"

	"github.com/Solipath/Solipath/internal/utils"
	"github.com/bodgit/sevenzip"
)

func extractSevenZip(source, destDir string) error {
	r, err := sevenzip.OpenReader(source)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
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
			link, err := readSevenZipEntry(f)
			if err != nil {
				return err
			}
			if err := writeSymlink(string(link), target); err != nil {
				return err
			}
		default:
			if err := writeSevenZipEntry(f, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func readSevenZipEntry(f *sevenzip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeSevenZipEntry(f *sevenzip.File, target string) error {
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
