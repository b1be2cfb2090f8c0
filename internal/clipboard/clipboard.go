// Package clipboard copies the canonical provisioning URI to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// For testing - allows us to mock these functions
var (
	execCommand = exec.Command
	lookPath    = exec.LookPath
	getenv      = os.Getenv
	runtimeGOOS = runtime.GOOS
)

// ErrNoTool is returned on Linux when no clipboard helper is installed
var ErrNoTool = errors.New("no clipboard tool found (install wl-clipboard, xclip or xsel)")

// Copy copies text to the clipboard and returns an error if unsuccessful
func Copy(text string) error {
	switch runtimeGOOS {
	case "darwin":
		return pipeTo(text, "pbcopy")
	case "linux", "freebsd", "openbsd", "netbsd":
		name, args, err := unixTool()
		if err != nil {
			return err
		}
		return pipeTo(text, name, args...)
	default:
		return fmt.Errorf("unsupported platform: %s", runtimeGOOS)
	}
}

// unixTool picks wl-copy under Wayland, then xclip, then xsel
func unixTool() (string, []string, error) {
	type tool struct {
		name string
		args []string
	}
	candidates := []tool{
		{"xclip", []string{"-selection", "clipboard"}},
		{"xsel", []string{"--clipboard", "--input"}},
	}
	if getenv("WAYLAND_DISPLAY") != "" {
		candidates = append([]tool{{"wl-copy", nil}}, candidates...)
	}

	for _, c := range candidates {
		if _, err := lookPath(c.name); err == nil {
			return c.name, c.args, nil
		}
	}
	return "", nil, ErrNoTool
}

// pipeTo runs name with args and writes text to its stdin
func pipeTo(text, name string, args ...string) error {
	cmd := execCommand(name, args...)
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	if _, err := pipe.Write([]byte(text)); err != nil {
		return err
	}

	if err := pipe.Close(); err != nil {
		return err
	}

	return cmd.Wait()
}
