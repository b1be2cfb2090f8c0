package failure

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := map[string]struct {
		err  *Error
		want string
	}{
		"message only": {
			err:  New(InvalidSecret, "The secret code is not valid"),
			want: "The secret code is not valid",
		},
		"with cause": {
			err:  Wrap(NetworkFailure, context.DeadlineExceeded, "Cannot load QR code image from http://x"),
			want: "Cannot load QR code image from http://x: context deadline exceeded",
		},
		"formatted": {
			err:  Newf(UnsupportedAlgorithm, "unsupported algorithm %q", "hotp"),
			want: `unsupported algorithm "hotp"`,
		},
		"nil cause": {
			err:  Wrap(DecodeFailure, nil, "no barcode"),
			want: "no barcode",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("resolving: %w", Wrap(NetworkFailure, errors.New("boom"), "fetch"))

	if !errors.Is(err, ErrNetwork) {
		t.Error("expected errors.Is(err, ErrNetwork)")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("did not expect errors.Is(err, ErrDecode)")
	}
	if KindOf(err) != NetworkFailure {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), NetworkFailure)
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := context.Canceled
	err := Wrap(NetworkFailure, cause, "fetch")

	if !errors.Is(err, context.Canceled) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Cause() != cause {
		t.Errorf("Cause() = %v, want %v", err.Cause(), cause)
	}
}

func TestAsSplitsMessageAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("resolving: %w", Wrap(NetworkFailure, cause, "Cannot load QR code image"))

	fe, ok := As(err)
	if !ok {
		t.Fatal("As() did not find the failure")
	}
	if fe.Message() != "Cannot load QR code image" {
		t.Errorf("Message() = %q", fe.Message())
	}
	if fe.Cause() != cause {
		t.Errorf("Cause() = %v, want %v", fe.Cause(), cause)
	}
	if New(EmptyInput, "x").Cause() != nil {
		t.Error("Cause() of an unwrapped failure should be nil")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != Unknown {
		t.Errorf("KindOf() = %v, want Unknown", got)
	}
	if _, ok := As(nil); ok {
		t.Error("As(nil) should not match")
	}
}

func TestKindString(t *testing.T) {
	if EnrollmentFailure.String() != "enrollment_failure" {
		t.Errorf("String() = %q", EnrollmentFailure.String())
	}
	if Kind(200).String() != "kind(200)" {
		t.Errorf("String() = %q", Kind(200).String())
	}
}
