package extractor

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Solipath/Solipath/internal/utils"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

func extractTarFile(source, destDir string, format Format) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader
	switch format {
	case FormatTarGz:
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		r = gr
	case FormatTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return err
		}
		r = xr
	case FormatTarBz2:
		r = bzip2.NewReader(f)
	case FormatTarZst:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	case FormatTar:
		r = f
	default:
		return fmt.Errorf("not a tar format: %s", format)
	}

	return extractTar(r, destDir)
}

// extractTar writes every entry of a tar stream below destDir.
func extractTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := utils.WriteStream(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(destDir, header.Linkname)
			if err != nil {
				return err
			}
			if err := utils.EnsureDir(filepath.Dir(target)); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				if err := utils.CopyFile(source, target); err != nil {
					return err
				}
			}
		case tar.TypeXGlobalHeader:
			continue
		default:
			return fmt.Errorf("unsupported entry %q of type %c", header.Name, header.Typeflag)
		}
	}
}

func writeSymlink(linkname, target string) error {
	if err := utils.EnsureDir(filepath.Dir(target)); err != nil {
		return err
	}
	if utils.Exists(target) {
		if err := os.Remove(target); err != nil {
			return err
		}
	}
	return os.Symlink(linkname, target)
}
