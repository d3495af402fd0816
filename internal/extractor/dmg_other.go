//go:build !darwin

package extractor

import (
	"fmt"
	"runtime"
)

func extractDmg(source, destDir string) error {
	return fmt.Errorf("dmg images can only be attached on macos, not %s", runtime.GOOS)
}
