// Package provision turns one raw user input into a validated Result.
//
// A resolution is a single forward pass:
//
//	Start -> Classified -> (FetchedOrDecoded | PassThrough) -> Parsed -> Sanitized -> Done
//
// and any step may end in Failed. Nothing is retried, and once a source
// specific step has started the resolver never falls back to treating the
// input as a different kind.
package provision

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bashhack/otpimport/internal/classify"
	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/fetch"
	"github.com/bashhack/otpimport/internal/otpauth"
	"github.com/bashhack/otpimport/internal/qrcode"
	"github.com/bashhack/otpimport/internal/secret"
	"github.com/bashhack/otpimport/internal/secure"
)

// Classifier picks the input kind
type Classifier interface {
	Classify(raw string) classify.Kind
}

// Fetcher downloads a remote image
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Decoder extracts QR text from image bytes
type Decoder interface {
	Decode(ctx context.Context, data []byte) (string, error)
}

// FileReader extracts QR text from an image file
type FileReader interface {
	DecodeFile(ctx context.Context, path string) (string, error)
}

// Resolver runs resolutions. It holds no per-resolution state and is safe
// for concurrent use when its collaborators are.
type Resolver struct {
	classifier Classifier
	fetcher    Fetcher
	decoder    Decoder
	files      FileReader
	log        zerolog.Logger
	observe    Observer
	newID      func() string
}

// Option configures a Resolver
type Option func(*Resolver)

// WithClassifier replaces the input classifier
func WithClassifier(c Classifier) Option {
	return func(r *Resolver) { r.classifier = c }
}

// WithFetcher replaces the remote image fetcher
func WithFetcher(f Fetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

// WithDecoder replaces the image decoder
func WithDecoder(d Decoder) Option {
	return func(r *Resolver) { r.decoder = d }
}

// WithFileReader replaces the local file decoder
func WithFileReader(f FileReader) Option {
	return func(r *Resolver) { r.files = f }
}

// WithLogger sets the logger; transitions are logged at debug level
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithObserver registers a hook called on every state transition
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observe = o }
}

// NewResolver returns a Resolver wired to the real filesystem, network and
// QR decoder unless overridden.
func NewResolver(opts ...Option) *Resolver {
	dec := qrcode.NewDecoder()
	r := &Resolver{
		classifier: classify.New(),
		fetcher:    fetch.New(),
		decoder:    dec,
		files:      dec,
		log:        zerolog.Nop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolution tracks one pass through the state machine
type resolution struct {
	r     *Resolver
	log   zerolog.Logger
	state State
}

func (res *resolution) enter(s State) {
	res.state = s
	res.log.Debug().Str("state", s.String()).Msg("resolution state")
	if res.r.observe != nil {
		res.r.observe(s)
	}
}

func (res *resolution) fail(err error) (Result, error) {
	res.log.Debug().
		Str("state", Failed.String()).
		Str("after", res.state.String()).
		Stringer("kind", failure.KindOf(err)).
		Err(err).
		Msg("resolution failed")
	res.state = Failed
	if res.r.observe != nil {
		res.r.observe(Failed)
	}
	return Result{}, err
}

// Resolve classifies raw, obtains its payload, and returns the sanitized
// Result. Blank input fails with EmptyInput before any I/O. Every error is a
// *failure.Error.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Result, error) {
	res := &resolution{
		r:   r,
		log: r.log.With().Str("resolution_id", r.newID()).Logger(),
	}
	res.enter(Start)

	input := strings.TrimSpace(raw)
	if input == "" {
		return res.fail(failure.New(failure.EmptyInput, "Please enter the Secret Code"))
	}

	kind := r.classifier.Classify(input)
	res.log = res.log.With().Str("source", kind.String()).Logger()
	res.enter(Classified)

	payload, err := r.payload(ctx, kind, input)
	if err != nil {
		return res.fail(err)
	}
	if kind.IsImage() {
		res.enter(FetchedOrDecoded)
	} else {
		res.enter(PassThrough)
	}

	candidate := payload
	label := ""
	algorithmType := constants.DefaultAlgorithm
	if uri, ok := otpauth.Parse(payload); ok {
		if err := uri.RequireTOTP(); err != nil {
			return res.fail(err)
		}
		candidate = uri.Secret
		label = uri.Label
		algorithmType = uri.Type
	}
	res.enter(Parsed)

	clean, err := secret.Sanitize(candidate)
	if err != nil {
		return res.fail(err)
	}
	res.enter(Sanitized)

	result, err := NewResult(clean, label, algorithmType, kind)
	if err != nil {
		return res.fail(err)
	}
	res.enter(Done)
	res.log.Debug().Object("result", result).Msg("resolution complete")

	return result, nil
}

// payload returns the text that carries the secret for the given kind.
// Image bytes are zeroed once decoded.
func (r *Resolver) payload(ctx context.Context, kind classify.Kind, input string) (string, error) {
	switch kind {
	case classify.RemoteImageURL:
		data, err := r.fetcher.Fetch(ctx, input)
		if err != nil {
			return "", err
		}
		defer secure.SecureZeroBytes(data)
		return r.decoder.Decode(ctx, data)

	case classify.DataURIImage:
		uri, err := classify.ParseDataURI(input)
		if err != nil {
			return "", err
		}
		defer secure.SecureZeroBytes(uri.Data)
		return r.decoder.Decode(ctx, uri.Data)

	case classify.LocalImageFile:
		return r.files.DecodeFile(ctx, input)

	default:
		return input, nil
	}
}
