package qrcode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/secure"
	"github.com/bashhack/otpimport/internal/testutil"
)

const testURI = "otpauth://totp/TestService:testuser@example.com?secret=JBSWY3DPEHPK3PXP&issuer=TestService"

func TestDecode(t *testing.T) {
	valid, err := testutil.QRCodePNG(testURI, 256)
	if err != nil {
		t.Fatalf("QRCodePNG() error = %v", err)
	}

	tests := map[string]struct {
		data    []byte
		want    string
		wantErr bool
		errMsg  string
	}{
		"valid qr png": {
			data: valid,
			want: testURI,
		},
		"not an image": {
			data:    []byte("not a png file"),
			wantErr: true,
			errMsg:  "failed to decode image",
		},
		"image without qr": {
			data:    testutil.CheckerPNG(100, 10),
			wantErr: true,
			errMsg:  "failed to decode QR code",
		},
		"empty": {
			data:    nil,
			wantErr: true,
			errMsg:  "no image data",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewDecoder().Decode(context.Background(), tt.data)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				if !errors.Is(err, failure.ErrDecode) {
					t.Errorf("Decode() error = %v, want DecodeFailure", err)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}

			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeCancelled(t *testing.T) {
	valid, err := testutil.QRCodePNG(testURI, 256)
	if err != nil {
		t.Fatalf("QRCodePNG() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewDecoder().Decode(ctx, valid)
	if !errors.Is(err, failure.ErrDecode) {
		t.Fatalf("Decode() error = %v, want DecodeFailure", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Decode() error = %v, want context.Canceled cause", err)
	}
}

func TestDecodeImageEmptyDimensions(t *testing.T) {
	_, err := DecodeImage(image.NewGray(image.Rect(0, 0, 0, 0)))
	if err == nil {
		t.Fatal("Expected error for empty image, got nil")
	}
	if !strings.Contains(err.Error(), "dimensions") {
		t.Errorf("Expected error about dimensions, got: %v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()

	valid, err := testutil.QRCodePNG(testURI, 200)
	if err != nil {
		t.Fatalf("QRCodePNG() error = %v", err)
	}
	validPath := filepath.Join(dir, "valid.png")
	if err := os.WriteFile(validPath, valid, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	invalidPath := filepath.Join(dir, "invalid.png")
	if err := os.WriteFile(invalidPath, []byte("not a png file"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := map[string]struct {
		path     string
		maxBytes int64
		want     string
		wantErr  bool
		errMsg   string
	}{
		"valid file": {
			path: validPath,
			want: testURI,
		},
		"file not found": {
			path:    filepath.Join(dir, "missing.png"),
			wantErr: true,
			errMsg:  "failed to open image file",
		},
		"invalid png file": {
			path:    invalidPath,
			wantErr: true,
			errMsg:  "failed to decode image",
		},
		"file over size limit": {
			path:     validPath,
			maxBytes: 16,
			wantErr:  true,
			errMsg:   "failed to read image file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := NewDecoder()
			if tt.maxBytes != 0 {
				d.MaxBytes = tt.maxBytes
			}

			got, err := d.DecodeFile(context.Background(), tt.path)

			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, failure.ErrDecode) {
					t.Errorf("DecodeFile() error = %v, want DecodeFailure", err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if got != tt.want {
				t.Errorf("DecodeFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	tests := map[string]struct {
		text    string
		width   int
		height  int
		margin  int
		wantErr bool
	}{
		"square": {
			text:   "otpauth://totp/x?secret=JBSWY3DP",
			width:  256,
			height: 256,
		},
		"rectangular": {
			text:   "otpauth://totp/x?secret=JBSWY3DP",
			width:  300,
			height: 200,
		},
		"with margin": {
			text:   "otpauth://totp/x?secret=JBSWY3DP",
			width:  256,
			height: 256,
			margin: 4,
		},
		"empty text": {
			text:    "",
			width:   256,
			height:  256,
			wantErr: true,
		},
		"zero size": {
			text:    "otpauth://totp/x?secret=JBSWY3DP",
			width:   0,
			height:  256,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := NewEncoder().EncodePNG(tt.text, tt.width, tt.height, tt.margin)

			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodePNG() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("EncodePNG() produced an unreadable PNG: %v", err)
			}
			if cfg.Width != tt.width || cfg.Height != tt.height {
				t.Errorf("image size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.width, tt.height)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	texts := []string{
		"otpauth://totp/x?secret=JBSWY3DP",
		"otpauth://totp/alice@example.com?secret=JBSWY3DPEHPK3PXP",
	}

	for _, text := range texts {
		data, err := NewEncoder().EncodePNG(text, 256, 256, 0)
		if err != nil {
			t.Fatalf("EncodePNG(%q) error = %v", text, err)
		}

		got, err := NewDecoder().Decode(context.Background(), data)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got != text {
			t.Errorf("round trip = %q, want %q", got, text)
		}
	}
}

func TestWriteTerminal(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder().WriteTerminal(&buf, "otpauth://totp/x?secret=JBSWY3DP"); err != nil {
		t.Fatalf("WriteTerminal() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("WriteTerminal() wrote nothing")
	}
	if lines := strings.Count(buf.String(), "\n"); lines < 10 {
		t.Errorf("WriteTerminal() wrote %d lines, expected a full symbol", lines)
	}
}

func TestDecodeCancelledMidwayLeavesCallerBufferAlone(t *testing.T) {
	data, err := testutil.QRCodePNG(testURI, 3000)
	if err != nil {
		t.Fatalf("QRCodePNG() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err = NewDecoder().Decode(ctx, data)

	// The caller zeroes its buffer as soon as Decode returns; the decode
	// goroutine may still be running and must not share it.
	secure.SecureZeroBytes(data)

	if err != nil && !errors.Is(err, failure.ErrDecode) {
		t.Errorf("Decode() error = %v, want DecodeFailure", err)
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("data[%d] = %d after zeroing", i, b)
		}
	}
}

// mockFileInfo implements os.FileInfo for testing
type mockFileInfo struct {
	size int64
}

func (m mockFileInfo) Name() string       { return "capture.png" }
func (m mockFileInfo) Size() int64        { return m.size }
func (m mockFileInfo) Mode() os.FileMode  { return 0o644 }
func (m mockFileInfo) ModTime() time.Time { return time.Now() }
func (m mockFileInfo) IsDir() bool        { return false }
func (m mockFileInfo) Sys() interface{}   { return nil }

func TestCaptureScreen(t *testing.T) {
	originalExec := execCommandContext
	originalStat := osStat
	originalGOOS := runtimeGOOS
	defer func() {
		execCommandContext = originalExec
		osStat = originalStat
		runtimeGOOS = originalGOOS
	}()

	tests := map[string]struct {
		goos     string
		mockExec func(ctx context.Context, name string, args ...string) *exec.Cmd
		mockStat func(name string) (os.FileInfo, error)
		wantErr  bool
		errMsg   string
	}{
		"unsupported platform": {
			goos:    "linux",
			wantErr: true,
			errMsg:  "not supported on linux",
		},
		"screenshot command fails": {
			goos: "darwin",
			mockExec: func(ctx context.Context, name string, args ...string) *exec.Cmd {
				return exec.CommandContext(ctx, "false")
			},
			wantErr: true,
			errMsg:  "failed to capture screenshot",
		},
		"screenshot canceled (file not found)": {
			goos: "darwin",
			mockExec: func(ctx context.Context, name string, args ...string) *exec.Cmd {
				return exec.CommandContext(ctx, "true")
			},
			mockStat: func(string) (os.FileInfo, error) { return nil, os.ErrNotExist },
			wantErr:  true,
			errMsg:   "screenshot capture was canceled or failed",
		},
		"screenshot too small": {
			goos: "darwin",
			mockExec: func(ctx context.Context, name string, args ...string) *exec.Cmd {
				return exec.CommandContext(ctx, "true")
			},
			mockStat: func(string) (os.FileInfo, error) { return mockFileInfo{size: 50}, nil },
			wantErr:  true,
			errMsg:   "screenshot capture was canceled or failed",
		},
		"screenshot captured": {
			goos: "darwin",
			mockExec: func(ctx context.Context, name string, args ...string) *exec.Cmd {
				return exec.CommandContext(ctx, "true")
			},
			mockStat: func(string) (os.FileInfo, error) { return mockFileInfo{size: 4096}, nil },
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			runtimeGOOS = tt.goos
			execCommandContext = originalExec
			osStat = originalStat
			if tt.mockExec != nil {
				execCommandContext = tt.mockExec
			}
			if tt.mockStat != nil {
				osStat = tt.mockStat
			}

			path, cleanup, err := CaptureScreen(context.Background())

			if (err != nil) != tt.wantErr {
				t.Fatalf("CaptureScreen() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}

			defer cleanup()
			if !strings.HasSuffix(path, ".png") {
				t.Errorf("CaptureScreen() path = %q, want a .png file", path)
			}
		})
	}
}
