package provision

import (
	"context"

	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/totp"
)

// Enroll hands result to the enroller and then synchronizes it. Any error
// from either call is an EnrollmentFailure.
func Enroll(ctx context.Context, result Result, e totp.Enroller) error {
	if err := e.Enroll(result.SecretKey()); err != nil {
		return failure.Wrap(failure.EnrollmentFailure, err,
			"Unable to create the authenticator. The secret code is probably invalid.")
	}
	if err := e.Synchronize(ctx); err != nil {
		return failure.Wrap(failure.EnrollmentFailure, err,
			"Unable to synchronize the authenticator clock")
	}
	return nil
}
