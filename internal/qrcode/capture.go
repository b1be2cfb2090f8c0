package qrcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// For testing
var (
	execCommandContext = exec.CommandContext
	osStat             = os.Stat
	runtimeGOOS        = runtime.GOOS
)

// minCaptureBytes is the size below which a capture is treated as cancelled
const minCaptureBytes = 100

// CaptureScreen lets the user select a screen region containing a QR code and
// returns the path of the captured PNG. The caller must invoke cleanup once
// the image has been consumed. Only macOS (screencapture) is supported.
func CaptureScreen(ctx context.Context) (path string, cleanup func(), err error) {
	if runtimeGOOS != "darwin" {
		return "", nil, fmt.Errorf("screen capture is not supported on %s", runtimeGOOS)
	}

	path = filepath.Join(os.TempDir(), fmt.Sprintf("otpimport-qr-%d.png", time.Now().UnixNano()))
	cleanup = func() { os.Remove(path) }

	cmd := execCommandContext(ctx, "screencapture", "-i", path)
	if err := cmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	// screencapture exits 0 when the selection is cancelled with Esc
	info, err := osStat(path)
	if err != nil || info.Size() < minCaptureBytes {
		cleanup()
		return "", nil, fmt.Errorf("screenshot capture was canceled or failed")
	}

	return path, cleanup, nil
}
