package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FileDownloader is the network side of a ConditionalFetcher
type FileDownloader interface {
	DownloadFile(ctx context.Context, url, path string) error
	DownloadToDir(ctx context.Context, url, dir string) (string, error)
}

// Decompressor unpacks a downloaded artifact
type Decompressor interface {
	Extract(source, destDir string) error
}

// SignatureVerifier checks a detached signature against an artifact
type SignatureVerifier interface {
	VerifyDetached(artifactPath, signaturePath string) error
}

// ConditionalFetcher only touches the network when the target is absent.
type ConditionalFetcher struct {
	downloader FileDownloader
	extractor  Decompressor
	verifier   SignatureVerifier
}

// NewConditionalFetcher creates a fetcher. verifier may be nil, in which case
// downloads that declare a signature fail verification.
func NewConditionalFetcher(downloader FileDownloader, extractor Decompressor, verifier SignatureVerifier) *ConditionalFetcher {
	return &ConditionalFetcher{
		downloader: downloader,
		extractor:  extractor,
		verifier:   verifier,
	}
}

// FetchIfMissing downloads url to path unless something already exists there.
func (c *ConditionalFetcher) FetchIfMissing(ctx context.Context, url, path string) error {
	if utils.Exists(path) {
		logrus.Debugf("Using cached %s", path)
		return nil
	}
	return c.downloader.DownloadFile(ctx, url, path)
}

// FetchDirIfMissing downloads, verifies and unpacks an artifact into dir unless
// dir already exists. Work happens in a sibling staging directory that is
// renamed into place, so an interrupted run never leaves a half-filled dir.
func (c *ConditionalFetcher) FetchDirIfMissing(ctx context.Context, d models.DownloadInstruction, dir string) error {
	if utils.Exists(dir) {
		logrus.Debugf("Using cached %s", dir)
		return nil
	}

	parent := filepath.Dir(dir)
	if err := utils.EnsureDir(parent); err != nil {
		return &models.SolipathError{Type: models.ErrDownload, Err: err}
	}

	staging := filepath.Join(parent, ".staging-"+uuid.NewString())
	if err := os.Mkdir(staging, 0755); err != nil {
		return &models.SolipathError{Type: models.ErrDownload, Err: err}
	}
	defer os.RemoveAll(staging)

	artifact, err := c.downloader.DownloadToDir(ctx, d.URL, filepath.Join(staging, "download"))
	if err != nil {
		return &models.SolipathError{Type: models.ErrDownload, Err: err}
	}

	if err := c.verify(ctx, d, artifact, staging); err != nil {
		return &models.SolipathError{Type: models.ErrVerification, Err: err}
	}

	extracted := filepath.Join(staging, "extracted")
	if err := c.extractor.Extract(artifact, extracted); err != nil {
		return &models.SolipathError{Type: models.ErrExtract, Err: err}
	}

	if err := os.Rename(extracted, dir); err != nil {
		if !utils.Exists(dir) {
			return &models.SolipathError{Type: models.ErrExtract, Err: fmt.Errorf("failed to move into %s: %w", dir, err)}
		}
		// Another download created dir (or a directory inside it) meanwhile.
		logrus.Debugf("%s appeared while extracting, merging", dir)
		if err := utils.MergeTree(extracted, dir); err != nil {
			return &models.SolipathError{Type: models.ErrExtract, Err: fmt.Errorf("failed to merge into %s: %w", dir, err)}
		}
	}
	return nil
}

func (c *ConditionalFetcher) verify(ctx context.Context, d models.DownloadInstruction, artifact, staging string) error {
	if d.SHA256 != "" {
		if err := utils.VerifySHA256(artifact, d.SHA256); err != nil {
			return fmt.Errorf("%s: %w", d.URL, err)
		}
		logrus.Debugf("sha256 of %s verified", filepath.Base(artifact))
	}

	if d.SignatureURL == "" {
		return nil
	}
	if c.verifier == nil {
		return errors.New("download declares a signature but no keyring is configured")
	}

	sigPath := filepath.Join(staging, "signature")
	if err := c.downloader.DownloadFile(ctx, d.SignatureURL, sigPath); err != nil {
		return err
	}
	if err := c.verifier.VerifyDetached(artifact, sigPath); err != nil {
		return fmt.Errorf("%s: %w", d.URL, err)
	}
	logrus.Debugf("Signature of %s verified", filepath.Base(artifact))
	return nil
}
