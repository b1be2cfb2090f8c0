// mock-qr-host.go - Serves a freshly generated provisioning QR code over HTTP
// so remote image imports can be tried end to end.
//
// Usage:
//   go run mock-qr-host.go [SERVICE_NAME] [ACCOUNT_NAME]
//
// Endpoints:
//   /qr.png      the QR code, answered with 202 Accepted
//   /qr-200.png  the same image with 200 OK
//   /login       an HTML page, to see the non-image failure
//   /slow.png    waits 30s before answering, to see the timeout

package main

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
)

const (
	// ANSI color codes
	colorReset  = "\033[0m"
	colorGreen  = "\033[0;32m"
	colorBlue   = "\033[0;34m"
	colorYellow = "\033[1;33m"
)

func generateSecret() (string, error) {
	// 16 random bytes (128 bits)
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return strings.TrimRight(base32.StdEncoding.EncodeToString(bytes), "="), nil
}

func generateTOTPURI(serviceName, accountName, secret string) string {
	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", serviceName)

	u := &url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + serviceName + ":" + accountName,
		RawQuery: params.Encode(),
	}
	return u.String()
}

func main() {
	serviceName := "TestService"
	accountName := "testuser@example.com"

	if len(os.Args) > 1 {
		serviceName = os.Args[1]
	}
	if len(os.Args) > 2 {
		accountName = os.Args[2]
	}

	secret, err := generateSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating secret: %v\n", err)
		os.Exit(1)
	}

	uri := generateTOTPURI(serviceName, accountName, secret)
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating QR code: %v\n", err)
		os.Exit(1)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listening: %v\n", err)
		os.Exit(1)
	}
	base := "http://" + ln.Addr().String()

	mux := http.NewServeMux()
	serve := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(status)
			w.Write(png)
		}
	}
	mux.HandleFunc("/qr.png", serve(http.StatusAccepted))
	mux.HandleFunc("/qr-200.png", serve(http.StatusOK))
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, "<html><body>Please sign in</body></html>")
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(30 * time.Second):
			serve(http.StatusOK)(w, r)
		case <-r.Context().Done():
		}
	})

	fmt.Printf("%s=== Mock QR Host: %s ===%s\n", colorGreen, serviceName, colorReset)
	fmt.Println()
	fmt.Printf("%sAccount:%s %s\n", colorBlue, colorReset, accountName)
	fmt.Printf("%sSecret:%s  %s\n", colorBlue, colorReset, secret)
	fmt.Println()
	fmt.Printf("%sTry:%s\n", colorGreen, colorReset)
	fmt.Printf("  %sotpimport -no-sync %s/qr.png%s\n", colorYellow, base, colorReset)
	fmt.Printf("  %sotpimport -no-sync -strict-status %s/qr-200.png%s   (refused)\n", colorYellow, base, colorReset)
	fmt.Printf("  %sotpimport -no-sync %s/login%s                       (not an image)\n", colorYellow, base, colorReset)
	fmt.Printf("  %sotpimport -no-sync -timeout 2s %s/slow.png%s        (timeout)\n", colorYellow, base, colorReset)
	fmt.Printf("  %sotpimport -no-sync 'data:image/png;base64,%s'%s\n", colorYellow,
		base64.StdEncoding.EncodeToString(png), colorReset)
	fmt.Println()
	fmt.Println("Press Ctrl-C to stop")

	if err := http.Serve(ln, mux); err != nil {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		os.Exit(1)
	}
}
