// Package otpauth reads and writes otpauth:// provisioning URIs.
//
// Parsing is deliberately loose: the pattern is matched anywhere in the
// payload and case-insensitively, the way authenticator sites actually emit
// these strings, rather than through a strict URL parser.
package otpauth

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/failure"
)

// Scheme is the provisioning URI scheme, including the separator
const Scheme = "otpauth://"

var uriPattern = regexp.MustCompile(`(?i)otpauth://([^/]+)/([^?]+)\?(.*)`)

// URI is a matched provisioning URI
type URI struct {
	// Type is the algorithm type as written, e.g. "totp" or "hotp"
	Type string

	// Label is the percent-decoded path label, e.g. "Example:alice@example.com"
	Label string

	// Secret is the secret query parameter, or the whole payload when absent
	Secret string

	// Params holds every query parameter
	Params url.Values
}

// Match reports whether s contains an otpauth://type/label?query pattern
func Match(s string) bool {
	return uriPattern.MatchString(s)
}

// Parse matches payload against otpauth://type/label?query. When the secret
// parameter is missing, the full payload is used as the secret candidate so
// that sanitization can still salvage a key from it.
func Parse(payload string) (URI, bool) {
	m := uriPattern.FindStringSubmatch(payload)
	if m == nil {
		return URI{}, false
	}

	params, err := url.ParseQuery(m[3])
	if err != nil {
		// ParseQuery keeps every pair it could decode
		params = lenientQuery(m[3])
	}

	label := m[2]
	if decoded, err := url.PathUnescape(label); err == nil {
		label = decoded
	}

	secret := payload
	if vals, ok := params["secret"]; ok && len(vals) > 0 {
		secret = vals[0]
	}

	return URI{
		Type:   m[1],
		Label:  label,
		Secret: secret,
		Params: params,
	}, true
}

// lenientQuery splits a raw query without failing on bad escapes
func lenientQuery(raw string) url.Values {
	out := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if uk, err := url.QueryUnescape(k); err == nil {
			k = uk
		}
		if uv, err := url.QueryUnescape(v); err == nil {
			v = uv
		}
		out.Add(k, v)
	}
	return out
}

// IsTOTP reports whether the URI declares the totp type
func (u URI) IsTOTP() bool {
	return strings.EqualFold(u.Type, constants.DefaultAlgorithm)
}

// RequireTOTP returns an UnsupportedAlgorithm failure for any other type.
// hotp is recognised syntactically but counter-based enrollment is not offered.
func (u URI) RequireTOTP() error {
	if u.IsTOTP() {
		return nil
	}
	return failure.Newf(failure.UnsupportedAlgorithm,
		"Unsupported authenticator type %q: only totp can be added", u.Type)
}

// Issuer returns the issuer parameter, or the label prefix before the last colon
func (u URI) Issuer() string {
	if issuer := u.Params.Get("issuer"); issuer != "" {
		return issuer
	}
	if i := strings.LastIndex(u.Label, ":"); i >= 0 {
		return strings.TrimSpace(u.Label[:i])
	}
	return ""
}

// Account returns the label part after the last colon, or the whole label
func (u URI) Account() string {
	if i := strings.LastIndex(u.Label, ":"); i >= 0 {
		return strings.TrimSpace(u.Label[i+1:])
	}
	return u.Label
}

// Build renders the canonical otpauth://{type}/{label}?secret={secret} string.
// The label is path-escaped so that Parse(Build(...)) returns it unchanged;
// labels like "alice@example.com" or "GitHub:bob" are written as-is.
func Build(algorithmType, label, secret string) string {
	return fmt.Sprintf("%s%s/%s?secret=%s", Scheme, algorithmType, url.PathEscape(label), url.QueryEscape(secret))
}
