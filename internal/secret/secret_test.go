package secret

import (
	"errors"
	"testing"

	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/testutil"
)

func TestSanitize(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"spaces and dashes": {
			input: "AB12 CD-34",
			want:  "AB12CD34",
		},
		"already clean": {
			input: "JBSWY3DPEHPK3PXP",
			want:  "JBSWY3DPEHPK3PXP",
		},
		"case preserved": {
			input: "jbsw y3dp EHPK 3pxp",
			want:  "jbswy3dpEHPK3pxp",
		},
		"base32 padding removed": {
			input: "JBSWY3DP====",
			want:  "JBSWY3DP",
		},
		"non-ascii letters removed": {
			input: "ÄB€12",
			want:  "B12",
		},
		"only punctuation": {
			input:   " -=- ",
			wantErr: true,
		},
		"empty": {
			input:   "",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := Sanitize(tt.input)

			if tt.wantErr {
				if !errors.Is(err, failure.ErrInvalidSecret) {
					t.Fatalf("Sanitize(%q) error = %v, want InvalidSecret", tt.input, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Sanitize(%q) unexpected error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeAlnumIsIdentity(t *testing.T) {
	for i := 0; i < 200; i++ {
		s, err := testutil.RandomAlnum(1 + i%40)
		if err != nil {
			t.Fatalf("RandomAlnum() error = %v", err)
		}
		got, err := Sanitize(s)
		if err != nil {
			t.Fatalf("Sanitize(%q) unexpected error = %v", s, err)
		}
		if got != s {
			t.Fatalf("Sanitize(%q) = %q, want identity", s, got)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for i := 0; i < 200; i++ {
		s, err := testutil.RandomNoisy(i % 50)
		if err != nil {
			t.Fatalf("RandomNoisy() error = %v", err)
		}
		once := Strip(s)
		twice := Strip(once)
		if once != twice {
			t.Fatalf("Strip not idempotent for %q: %q then %q", s, once, twice)
		}
		if once != "" && !IsClean(once) {
			t.Fatalf("Strip(%q) = %q still contains non-alphanumerics", s, once)
		}
	}
}

func TestIsClean(t *testing.T) {
	if IsClean("") {
		t.Error("IsClean(\"\") = true")
	}
	if !IsClean("abc123XYZ") {
		t.Error("IsClean(abc123XYZ) = false")
	}
	if IsClean("abc 123") {
		t.Error("IsClean(\"abc 123\") = true")
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("JBSWY3DPEHPK3PXP")
	b := Fingerprint("JBSWY3DPEHPK3PXP")
	c := Fingerprint("JBSWY3DPEHPK3PXQ")

	if a != b {
		t.Errorf("Fingerprint not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Error("Fingerprint collided for different secrets")
	}
	if len(a) != 12 {
		t.Errorf("Fingerprint length = %d, want 12", len(a))
	}
	if Fingerprint("") != "" {
		t.Error("Fingerprint(\"\") should be empty")
	}
}
