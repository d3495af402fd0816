//go:build darwin

package extractor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/Solipath/Solipath/internal/utils"
	"github.com/sirupsen/logrus"
)

// extractDmg attaches the image read-only at a temporary mount point and
// copies its contents out.
func extractDmg(source, destDir string) error {
	mountPoint, err := os.MkdirTemp("", "solipath-dmg-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(mountPoint)

	attach := exec.Command("hdiutil", "attach", "-nobrowse", "-readonly", "-noverify", "-mountpoint", mountPoint, source)
	if out, err := attach.CombinedOutput(); err != nil {
		return fmt.Errorf("hdiutil attach failed: %w: %s", err, out)
	}
	defer func() {
		if out, err := exec.Command("hdiutil", "detach", mountPoint, "-force").CombinedOutput(); err != nil {
			logrus.Warnf("hdiutil detach %s failed: %v: %s", mountPoint, err, out)
		}
	}()

	return utils.CopyTree(mountPoint, destDir)
}
