package provision

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bashhack/otpimport/internal/classify"
	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/otpauth"
	"github.com/bashhack/otpimport/internal/secret"
)

// Result is the outcome of a successful resolution. It is built once and has
// no setters; the zero value is not a valid Result.
type Result struct {
	secretKey     string
	label         string
	algorithmType string
	source        classify.Kind
}

// NewResult validates its inputs and builds a Result. secretKey must already
// be sanitized; an empty algorithmType means totp.
func NewResult(secretKey, label, algorithmType string, source classify.Kind) (Result, error) {
	if !secret.IsClean(secretKey) {
		return Result{}, failure.New(failure.InvalidSecret, "The secret code is not valid")
	}
	if algorithmType == "" {
		algorithmType = constants.DefaultAlgorithm
	}
	return Result{
		secretKey:     secretKey,
		label:         label,
		algorithmType: strings.ToLower(algorithmType),
		source:        source,
	}, nil
}

// SecretKey is the sanitized secret, restricted to [0-9A-Za-z]
func (r Result) SecretKey() string { return r.secretKey }

// Label is the account label from the provisioning URI, possibly empty
func (r Result) Label() string { return r.label }

// AlgorithmType is the lower-case authenticator type, "totp" unless a URI said otherwise
func (r Result) AlgorithmType() string { return r.algorithmType }

// Source records how the input was classified
func (r Result) Source() classify.Kind { return r.source }

// URI is the canonical provisioning URI for r
func (r Result) URI() string {
	return otpauth.Build(r.algorithmType, r.label, r.secretKey)
}

// Fingerprint identifies the secret without revealing it
func (r Result) Fingerprint() string {
	return secret.Fingerprint(r.secretKey)
}

// String never includes the secret
func (r Result) String() string {
	return fmt.Sprintf("%s/%s (%s, key %s)", r.algorithmType, r.label, r.source, r.Fingerprint())
}

// MarshalZerologObject logs r without the secret
func (r Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", r.algorithmType).
		Str("label", r.label).
		Str("source", r.source.String()).
		Str("fingerprint", r.Fingerprint())
}
