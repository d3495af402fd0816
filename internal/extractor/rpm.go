package extractor

import (
	"fmt"
	"os"

	"github.com/sassoftware/go-rpmutils"
)

// extractRpm unpacks the cpio payload of an RPM package.
func extractRpm(source, destDir string) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return fmt.Errorf("failed to read RPM: %w", err)
	}

	return rpm.ExpandPayload(destDir)
}
