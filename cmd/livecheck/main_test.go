package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpalmerr/livecheck"
	"github.com/jpalmerr/livecheck/config"
)

// writeFile writes content to name inside a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// channelSite serves alice as live and bob as offline.
func channelSite(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/alice":
			fmt.Fprint(w, `<html><head><title>alice - Twitch</title></head><body>"isLiveBroadcast":true alice</body></html>`)
		case "/bob":
			fmt.Fprint(w, `<html><body>bob is offline</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"interrupted", context.Canceled, exitInterrupted},
		{"wrapped interrupt", fmt.Errorf("run: %w", context.Canceled), exitInterrupted},
		{"no host", &livecheck.FatalError{Name: "a", Code: livecheck.ExitNoHost, Err: errors.New("x")}, 68},
		{"unavailable", &livecheck.FatalError{Name: "a", Code: livecheck.ExitUnavailable, Err: errors.New("x")}, 69},
		{"missing file", &config.FileError{Path: "x", Err: os.ErrNotExist}, 2},
		{"wrapped missing file", fmt.Errorf("load: %w", &config.FileError{Path: "x", Err: os.ErrNotExist}), 2},
		{"other", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute([]string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "livecheck dev") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestCheck_EndToEnd(t *testing.T) {
	ts := channelSite(t)
	names := writeFile(t, "streamer_list.txt", "alice\nbob\n")
	cfg := writeFile(t, "livecheck.yaml", fmt.Sprintf(`
base_url: %s
max_workers: 2
retry_interval: 100ms
tick: 10ms
render_interval: 20ms
fetch_timeout: 2s
`, ts.URL))

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", names, "-c", cfg}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	frames := strings.Split(strings.TrimSpace(out), "\n")
	last := frames[len(frames)-2:]
	if last[0] != "alice:\tLive\talice - Twitch" {
		t.Errorf("alice row = %q", last[0])
	}
	if last[1] != "bob:  \tOffline" {
		t.Errorf("bob row = %q", last[1])
	}
}

func TestCheck_FlagsOverrideConfig(t *testing.T) {
	ts := channelSite(t)
	names := writeFile(t, "names.txt", "bob\n")
	cfg := writeFile(t, "livecheck.yaml", fmt.Sprintf("base_url: %s\ntick: 10ms\nrender_interval: 20ms\n", ts.URL))

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", names, "-c", cfg, "--workers", "0"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "max_workers") {
		t.Errorf("stderr = %q, want max_workers error", stderr.String())
	}
}

func TestCheck_MissingNamesFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "streamer_list.txt")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", missing}, &stdout, &stderr)
	if code != config.ExitNoInput {
		t.Fatalf("exit code = %d, want %d", code, config.ExitNoInput)
	}
	if !strings.Contains(stderr.String(), "streamer_list.txt") {
		t.Errorf("stderr = %q, should name the file", stderr.String())
	}
}

func TestCheck_InvalidName(t *testing.T) {
	names := writeFile(t, "names.txt", "alice\nnot a name\n")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", names}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "line 2") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestCheck_SiteUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close() // nothing listens here any more

	names := writeFile(t, "names.txt", "alice\n")
	cfg := writeFile(t, "livecheck.yaml", fmt.Sprintf("base_url: %s\ntick: 10ms\nrender_interval: 20ms\n", url))

	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", names, "-c", cfg}, &stdout, &stderr)
	if code != livecheck.ExitUnavailable {
		t.Fatalf("exit code = %d, want %d, stderr: %s", code, livecheck.ExitUnavailable, stderr.String())
	}
	if !strings.Contains(stderr.String(), "livecheck: fetch alice") {
		t.Errorf("stderr = %q", stderr.String())
	}
	// the final table is still rendered
	if !strings.Contains(stdout.String(), "alice:") {
		t.Errorf("stdout = %q, want final table", stdout.String())
	}
}

func TestCheck_InvalidLogLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"check", "--log-level", "loud"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestValidate_Valid(t *testing.T) {
	names := writeFile(t, "names.txt", "alice\nbob\nalice\n")
	cfg := writeFile(t, "livecheck.yaml", "max_workers: 3\nretry_interval: 2s\n")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"validate", "-c", cfg, names}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	expected := []string{
		"Config is valid!",
		"Names:          3 (2 unique)",
		"Workers:        3",
		"Retry interval: 2s",
		"Fetcher:        http",
	}
	for _, phrase := range expected {
		if !strings.Contains(stdout.String(), phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, stdout.String())
		}
	}
}

func TestValidate_InvalidConfig(t *testing.T) {
	cfg := writeFile(t, "livecheck.yaml", "fetcher: curl\n")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"validate", "-c", cfg}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "invalid config") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestValidate_MissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"validate", "-c", filepath.Join(t.TempDir(), "nope.yaml")}, &stdout, &stderr)
	if code != config.ExitNoInput {
		t.Errorf("exit code = %d, want %d", code, config.ExitNoInput)
	}
}
