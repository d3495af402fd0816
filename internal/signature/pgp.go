// Package signature verifies detached OpenPGP signatures on downloaded artifacts.
package signature

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

// PGPVerifier checks signatures against a trusted keyring
type PGPVerifier struct {
	keyring openpgp.EntityList
}

// NewPGPVerifier loads an armored or binary public keyring from keyringPath
func NewPGPVerifier(keyringPath string) (*PGPVerifier, error) {
	if keyringPath == "" {
		return nil, fmt.Errorf("keyring path is empty")
	}

	data, err := os.ReadFile(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}

	return NewPGPVerifierFromBytes(data)
}

// NewPGPVerifierFromBytes parses a keyring held in memory
func NewPGPVerifierFromBytes(data []byte) (*PGPVerifier, error) {
	// Try to parse as armored keyring first
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys found in keyring")
	}

	return &PGPVerifier{keyring: keyring}, nil
}

// VerifyDetached checks that signaturePath holds a valid signature of
// artifactPath by a key in the keyring. Both armored and binary signatures work.
func (v *PGPVerifier) VerifyDetached(artifactPath, signaturePath string) error {
	sig, err := os.ReadFile(signaturePath)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	artifact, err := os.Open(artifactPath)
	if err != nil {
		return err
	}
	defer artifact.Close()

	if isArmored(sig) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, artifact, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, artifact, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("signature check failed: %w", err)
	}
	return nil
}

func isArmored(data []byte) bool {
	block, err := armor.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}
	_, err = io.Copy(io.Discard, block.Body)
	return err == nil
}
