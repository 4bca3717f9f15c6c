// Package browser opens the locally served portfolio in the default browser.
package browser

import (
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"runtime"
)

// start launches the platform opener; replaced in tests.
var start = func(name string, args ...string) error {
	return exec.Command(name, args...).Start() // #nosec G204 -- arguments validated by Open
}

// Open opens the URL in the default browser. Only http and https URLs with
// a host are accepted.
func Open(urlString string) error {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		return start("xdg-open", parsedURL.String())
	case "darwin":
		return start("open", parsedURL.String())
	case "windows":
		return start("rundll32", "url.dll,FileProtocolHandler", parsedURL.String())
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// LocalURL turns a listen address such as ":3001" or "0.0.0.0:3001" into a
// browsable http://localhost URL.
func LocalURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return (&url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: "/"}).String(), nil
}
