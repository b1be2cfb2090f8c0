package totp

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Period is the code step used by every authenticator this tool provisions
const Period = 30 * time.Second

// All generation goes through one set of options so the enroll check and the
// codes shown afterwards cannot disagree.
var generateOpts = totp.ValidateOpts{
	Period:    uint(Period / time.Second),
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// GenerateForTime returns the code valid at t
func GenerateForTime(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(secret, t, generateOpts)
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP for time %v: %w", t, err)
	}
	return code, nil
}

// GenerateConsecutiveCodes returns the code at t and the one for the following step
func GenerateConsecutiveCodes(secret string, t time.Time) (current string, next string, err error) {
	current, err = totp.GenerateCodeCustom(secret, t, generateOpts)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate current TOTP: %w", err)
	}

	next, err = totp.GenerateCodeCustom(secret, t.Add(Period), generateOpts)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate next TOTP: %w", err)
	}

	return current, next, nil
}
