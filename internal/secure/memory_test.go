package secure

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSecureZeroBytes(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"nil slice", nil},
		{"empty slice", []byte{}},
		{"sample data", []byte("JBSWY3DPEHPK3PXP")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SecureZeroBytes(tc.data)

			for i, b := range tc.data {
				if b != 0 {
					t.Errorf("Byte at index %d was not zeroed, expected 0, got %d", i, b)
				}
			}
		})
	}
}

func TestReadBounded(t *testing.T) {
	tests := map[string]struct {
		input   string
		limit   int64
		want    string
		wantErr error
	}{
		"under limit": {
			input: "png-bytes",
			limit: 64,
			want:  "png-bytes",
		},
		"exactly at limit": {
			input: "12345678",
			limit: 8,
			want:  "12345678",
		},
		"over limit": {
			input:   "123456789",
			limit:   8,
			wantErr: ErrTooLarge,
		},
		"no limit": {
			input: strings.Repeat("x", 1024),
			limit: 0,
			want:  strings.Repeat("x", 1024),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ReadBounded(strings.NewReader(tt.input), tt.limit)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadBounded() error = %v, want %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("ReadBounded() returned %d bytes alongside an error", len(got))
				}
				return
			}

			if err != nil {
				t.Fatalf("ReadBounded() unexpected error = %v", err)
			}
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("ReadBounded() = %q, want %q", got, tt.want)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestReadBoundedPropagatesReadError(t *testing.T) {
	_, err := ReadBounded(failingReader{}, 16)
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("ReadBounded() error = %v, want connection reset", err)
	}
}
