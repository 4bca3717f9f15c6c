package browser

import (
	"runtime"
	"strings"
	"testing"
)

// stubStart records the opener invocation instead of launching a browser.
func stubStart(t *testing.T) *[]string {
	t.Helper()
	var got []string
	orig := start
	start = func(name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}
	t.Cleanup(func() { start = orig })
	return &got
}

func TestOpen_PassesValidatedURLToOpener(t *testing.T) {
	got := stubStart(t)

	err := Open("http://localhost:3001/")

	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skipf("no opener on %s", runtime.GOOS)
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*got) == 0 || (*got)[len(*got)-1] != "http://localhost:3001/" {
		t.Errorf("opener should receive the URL last, got %v", *got)
	}
}

func TestOpen_RejectsInvalidScheme(t *testing.T) {
	got := stubStart(t)
	tests := []struct {
		name string
		url  string
	}{
		{"file scheme", "file:///etc/passwd"},
		{"javascript scheme", "javascript:alert(1)"},
		{"data scheme", "data:text/html,<script>alert(1)</script>"},
		{"ftp scheme", "ftp://example.com"},
		{"no scheme", "example.com"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Open(tt.url)
			if err == nil {
				t.Fatalf("should reject %q", tt.url)
			}
			if !strings.Contains(err.Error(), "unsupported URL scheme") && !strings.Contains(err.Error(), "invalid URL") {
				t.Errorf("expected URL validation error, got: %v", err)
			}
		})
	}
	if len(*got) != 0 {
		t.Errorf("opener must not run for rejected URLs, got %v", *got)
	}
}

func TestOpen_RejectsControlCharacters(t *testing.T) {
	stubStart(t)

	for _, u := range []string{"http://example.com\nrm -rf /", "http://example.com\x00"} {
		if err := Open(u); err == nil {
			t.Errorf("should reject %q", u)
		}
	}
}

func TestLocalURL(t *testing.T) {
	tests := map[string]string{
		":3001":          "http://localhost:3001/",
		"0.0.0.0:8080":   "http://localhost:8080/",
		"127.0.0.1:9000": "http://127.0.0.1:9000/",
	}
	for addr, want := range tests {
		got, err := LocalURL(addr)
		if err != nil {
			t.Fatalf("LocalURL(%q): %v", addr, err)
		}
		if got != want {
			t.Errorf("LocalURL(%q) = %q, want %q", addr, got, want)
		}
	}

	if _, err := LocalURL("3001"); err == nil {
		t.Error("an address without a port separator should be rejected")
	}
}
