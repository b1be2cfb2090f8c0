package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Version information (set by ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := NewDefaultApp()
	run(app, os.Args)
}

// run is the testable entrypoint for the application
func run(app *App, args []string) {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(app.Stderr)
	fs.Usage = func() { printUsage(app.Stderr) }

	var opts Options
	fs.StringVar(&opts.Out, "out", "", "Write the confirmation QR code PNG to this path")
	fs.IntVar(&opts.Size, "size", 0, "Confirmation QR code width and height in pixels")
	fs.BoolVar(&opts.Clip, "clip", false, "Copy the provisioning URI to the clipboard")
	fs.BoolVar(&opts.NoSync, "no-sync", false, "Skip clock synchronization after enrollment")
	fs.BoolVar(&opts.Scan, "scan", false, "Capture a QR code from the screen (macOS)")
	fs.BoolVar(&opts.StrictStatus, "strict-status", false, "Only accept HTTP 202 when fetching images")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "Image download timeout")
	fs.BoolVar(&opts.Codes, "codes", false, "Print the current and next codes after enrollment")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log each resolution step to stderr")
	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show usage")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(app.Stderr, "❌ error parsing arguments: %v\n", err)
		app.Exit(1)
		return
	}

	if *showVersion {
		app.ShowVersion()
		return
	}

	if *showHelp {
		printUsage(app.Stdout)
		return
	}

	if opts.Size < 0 || opts.Timeout < 0 {
		fmt.Fprintln(app.Stderr, "❌ -size and -timeout must not be negative")
		app.Exit(1)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, opts, fs.Args()); err != nil {
		fmt.Fprintf(app.Stderr, "❌ %v\n", err)
		app.Exit(1)
	}
}

// Options are the command line switches that shape a run
type Options struct {
	Out          string
	Size         int
	Clip         bool
	NoSync       bool
	Scan         bool
	StrictStatus bool
	Timeout      time.Duration
	Codes        bool
	Verbose      bool
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: otpimport [options] [input ...]")
	fmt.Fprintln(w, "\nEach input may be a QR code image URL, a data:image URI, a local image")
	fmt.Fprintln(w, "file, an otpauth:// URI or a raw secret. With no input, one is read from")
	fmt.Fprintln(w, "the terminal without echo, or one per line from piped stdin.")
	fmt.Fprintln(w, "\nOptions:")
	fmt.Fprintln(w, "  --out, -out string          Write the confirmation QR code PNG to this path")
	fmt.Fprintln(w, "  --size, -size int           Confirmation QR code size in pixels (default 256)")
	fmt.Fprintln(w, "  --clip, -clip               Copy the provisioning URI to the clipboard")
	fmt.Fprintln(w, "  --codes, -codes             Print the current and next codes after enrollment")
	fmt.Fprintln(w, "  --no-sync, -no-sync         Skip clock synchronization after enrollment")
	fmt.Fprintln(w, "  --scan, -scan               Capture a QR code from the screen (macOS)")
	fmt.Fprintln(w, "  --strict-status, -strict-status  Only accept HTTP 202 when fetching images")
	fmt.Fprintln(w, "  --timeout, -timeout dur     Image download timeout (default 20s)")
	fmt.Fprintln(w, "  --verbose, -verbose         Log each resolution step to stderr")
	fmt.Fprintln(w, "  --version, -version         Show version information")
	fmt.Fprintln(w, "  --help, -help               Show usage")
	fmt.Fprintln(w, "\nEnvironment (also read from .env):")
	fmt.Fprintln(w, "  OTPIMPORT_FETCH_TIMEOUT, OTPIMPORT_USER_AGENT, OTPIMPORT_MAX_IMAGE_BYTES,")
	fmt.Fprintln(w, "  OTPIMPORT_STRICT_STATUS, OTPIMPORT_QR_SIZE, OTPIMPORT_TIME_SYNC,")
	fmt.Fprintln(w, "  OTPIMPORT_TIME_SYNC_URL, OTPIMPORT_TIME_SYNC_TIMEOUT,")
	fmt.Fprintln(w, "  OTPIMPORT_LOG_LEVEL, OTPIMPORT_LOG_FORMAT")
	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, "  otpimport 'otpauth://totp/GitHub:alice?secret=JBSWY3DPEHPK3PXP'")
	fmt.Fprintln(w, "  otpimport -out confirm.png https://example.com/qr.png")
	fmt.Fprintln(w, "  otpimport -scan -codes")
	fmt.Fprintln(w, "  otpimport -clip ~/Downloads/qr.png")
}
