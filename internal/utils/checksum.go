package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Checksum contains the digest and size of a file
type Checksum struct {
	SHA256 string
	Size   int64
}

// CalculateChecksum hashes a file in a single pass
func CalculateChecksum(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, err
	}

	return &Checksum{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   n,
	}, nil
}

// VerifySHA256 compares the file digest against a hex string, ignoring case
func VerifySHA256(path, expected string) error {
	sum, err := CalculateChecksum(path)
	if err != nil {
		return err
	}

	if !strings.EqualFold(sum.SHA256, strings.TrimSpace(expected)) {
		return fmt.Errorf("sha256 mismatch: expected %s, got %s over %d bytes", expected, sum.SHA256, sum.Size)
	}
	return nil
}
