package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/bashhack/otpimport/internal/clipboard"
	"github.com/bashhack/otpimport/internal/config"
	"github.com/bashhack/otpimport/internal/confirm"
	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/fetch"
	"github.com/bashhack/otpimport/internal/logging"
	"github.com/bashhack/otpimport/internal/otpauth"
	"github.com/bashhack/otpimport/internal/provision"
	"github.com/bashhack/otpimport/internal/qrcode"
	"github.com/bashhack/otpimport/internal/secure"
	"github.com/bashhack/otpimport/internal/totp"
)

// ExitFunc is a function type for exiting the program
type ExitFunc func(code int)

// App represents the main application
type App struct {
	LoadConfig    func() (*config.Config, error)
	NewEnroller   func(cfg *config.Config) totp.Enroller
	ReadInputs    func() ([]string, error)
	CaptureScreen func(ctx context.Context) (string, func(), error)
	Clipboard     func(text string) error
	WriteFile     func(name string, data []byte, perm os.FileMode) error
	Resolver      func(cfg *config.Config) *provision.Resolver
	Exit          ExitFunc
	Stdout        io.Writer
	Stderr        io.Writer
	VersionInfo   VersionInfo
}

// VersionInfo contains version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewDefaultApp creates a new App with default dependencies
func NewDefaultApp() *App {
	app := &App{
		LoadConfig:    config.Load,
		NewEnroller:   defaultEnroller,
		ReadInputs:    func() ([]string, error) { return readInputs(os.Stdin, os.Stderr) },
		CaptureScreen: qrcode.CaptureScreen,
		Clipboard:     clipboard.Copy,
		WriteFile:     os.WriteFile,
		Exit:          os.Exit,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		VersionInfo: VersionInfo{
			Version: version,
			Commit:  commit,
			Date:    date,
		},
	}
	app.Resolver = app.defaultResolver
	return app
}

func defaultEnroller(cfg *config.Config) totp.Enroller {
	opts := []totp.EnrollerOption{
		totp.WithSyncURL(cfg.Sync.URL),
		totp.WithSyncTimeout(cfg.Sync.Timeout),
	}
	if !cfg.Sync.Enabled {
		opts = append(opts, totp.WithoutSync())
	}
	return totp.NewDefaultEnroller(opts...)
}

func (a *App) defaultResolver(cfg *config.Config) *provision.Resolver {
	fetchOpts := []fetch.Option{
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithMaxBytes(cfg.Fetch.MaxBytes),
	}
	if cfg.Fetch.StrictStatus {
		fetchOpts = append(fetchOpts, fetch.WithStrictAccepted())
	}

	dec := qrcode.NewDecoder()
	dec.MaxBytes = cfg.Fetch.MaxBytes

	log := logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Component: "resolver",
		Writer:    a.Stderr,
	})

	return provision.NewResolver(
		provision.WithFetcher(fetch.New(fetchOpts...)),
		provision.WithDecoder(dec),
		provision.WithFileReader(dec),
		provision.WithLogger(log),
	)
}

// ShowVersion displays version information
func (a *App) ShowVersion() {
	fmt.Fprintf(a.Stdout, "otpimport version %s (%s) built on %s\n",
		a.VersionInfo.Version, a.VersionInfo.Commit, a.VersionInfo.Date)
}

// outcome is everything produced for one input
type outcome struct {
	result provision.Result
	png    []byte
	uri    string
	err    error
}

// codeSource is implemented by enrollers that can show codes after enrollment
type codeSource interface {
	Codes(secret string) (current string, next string, err error)
}

// Run resolves, enrolls and confirms every input, then reports the results in
// input order. It returns an error when at least one input failed.
func (a *App) Run(ctx context.Context, opts Options, inputs []string) error {
	cfg, err := a.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOptions(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	if opts.Scan {
		path, cleanup, err := a.CaptureScreen(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		inputs = append(inputs, path)
	}

	if len(inputs) == 0 {
		inputs, err = a.ReadInputs()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if len(inputs) == 0 {
			inputs = []string{""}
		}
	}

	resolver := a.Resolver(cfg)
	enroller := a.NewEnroller(cfg)
	encoder := confirm.New()

	outcomes := make([]outcome, len(inputs))
	var g errgroup.Group
	g.SetLimit(constants.MaxParallelResolutions)
	for i, input := range inputs {
		g.Go(func() error {
			outcomes[i] = process(ctx, resolver, enroller, encoder, input, cfg.Confirmation.Size)
			return nil
		})
	}
	_ = g.Wait()

	return a.report(opts, encoder, enroller, outcomes)
}

func applyOptions(cfg *config.Config, opts Options) {
	if opts.Size > 0 {
		cfg.Confirmation.Size = opts.Size
	}
	if opts.Timeout > 0 {
		cfg.Fetch.Timeout = opts.Timeout
	}
	if opts.StrictStatus {
		cfg.Fetch.StrictStatus = true
	}
	if opts.NoSync {
		cfg.Sync.Enabled = false
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
}

func process(ctx context.Context, r *provision.Resolver, e totp.Enroller, enc *confirm.Encoder, input string, size int) outcome {
	result, err := r.Resolve(ctx, input)
	if err != nil {
		return outcome{err: err}
	}
	if err := provision.Enroll(ctx, result, e); err != nil {
		return outcome{result: result, err: err}
	}
	png, uri, err := enc.Encode(result, size, size)
	if err != nil {
		return outcome{result: result, err: err}
	}
	return outcome{result: result, png: png, uri: uri}
}

func (a *App) report(opts Options, enc *confirm.Encoder, e totp.Enroller, outcomes []outcome) error {
	failed := 0
	var uris []string

	for i, o := range outcomes {
		prefix := ""
		if len(outcomes) > 1 {
			prefix = fmt.Sprintf("[%d] ", i+1)
		}

		if o.err != nil {
			failed++
			a.printFailure(prefix, o.err)
			continue
		}

		fmt.Fprintf(a.Stdout, "✅ %sAdded %s\n", prefix, describe(o.result))
		uris = append(uris, o.uri)

		if opts.Codes {
			if cs, ok := e.(codeSource); ok {
				current, next, err := cs.Codes(o.result.SecretKey())
				if err != nil {
					fmt.Fprintf(a.Stderr, "❌ %sfailed to generate codes: %v\n", prefix, err)
				} else {
					fmt.Fprintf(a.Stdout, "   Current code: %s  Next: %s\n", current, next)
				}
			}
		}

		if opts.Out != "" {
			path := outputPath(opts.Out, i, len(outcomes))
			if err := a.WriteFile(path, o.png, 0o600); err != nil {
				failed++
				fmt.Fprintf(a.Stderr, "❌ %sfailed to write %s: %v\n", prefix, path, err)
			} else {
				fmt.Fprintf(a.Stdout, "   Confirmation QR code written to %s\n", path)
			}
		} else if err := enc.WriteTerminal(a.Stdout, o.result); err != nil {
			fmt.Fprintf(a.Stderr, "❌ %sfailed to draw confirmation QR code: %v\n", prefix, err)
		}
		secure.SecureZeroBytes(o.png)
	}

	if opts.Clip && len(uris) > 0 {
		if err := a.Clipboard(strings.Join(uris, "\n")); err != nil {
			fmt.Fprintf(a.Stderr, "❌ failed to copy to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(a.Stdout, "✅ Provisioning URI copied to clipboard")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be added", failed, len(outcomes))
	}
	return nil
}

// printFailure shows the user-facing message, with any underlying cause on
// its own line
func (a *App) printFailure(prefix string, err error) {
	fe, ok := failure.As(err)
	if !ok {
		fmt.Fprintf(a.Stderr, "❌ %s%v\n", prefix, err)
		return
	}
	fmt.Fprintf(a.Stderr, "❌ %s%s\n", prefix, fe.Message())
	if cause := fe.Cause(); cause != nil {
		fmt.Fprintf(a.Stderr, "   Cause: %v\n", cause)
	}
}

// describe summarizes a result without exposing the secret
func describe(r provision.Result) string {
	label := otpauth.URI{Label: r.Label()}
	who := label.Account()
	if who == "" {
		who = "unnamed account"
	}
	if issuer := label.Issuer(); issuer != "" {
		who += " at " + issuer
	}
	return fmt.Sprintf("%s authenticator for %s (from %s, key %s)",
		r.AlgorithmType(), who, strings.ReplaceAll(r.Source().String(), "_", " "), r.Fingerprint())
}

// outputPath numbers the output file when several inputs share one -out path
func outputPath(out string, i, n int) string {
	if n <= 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(out, ext), i+1, ext)
}

// readInputs prompts for one hidden input on a terminal, or reads one input
// per non-empty line from a pipe.
func readInputs(stdin *os.File, prompt io.Writer) ([]string, error) {
	fd := int(stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintln(prompt, "Enter a secret code, otpauth:// URI, image path or image URL (input is hidden):")
		line, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return nil, err
		}
		defer secure.SecureZeroBytes(line)
		return []string{string(line)}, nil
	}
	return scanLines(stdin)
}

func scanLines(r io.Reader) ([]string, error) {
	data, err := secure.ReadBounded(r, constants.MaxImageBytes)
	if err != nil {
		return nil, err
	}
	defer secure.SecureZeroBytes(data)

	var inputs []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			inputs = append(inputs, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return inputs, nil
}

