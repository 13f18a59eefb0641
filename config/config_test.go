package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("MaxWorkers = %d, want %d", cfg.MaxWorkers, DefaultMaxWorkers)
	}
	if cfg.MaxRequestsPerSecond != DefaultMaxRequestsPerSecond {
		t.Errorf("MaxRequestsPerSecond = %d, want %d", cfg.MaxRequestsPerSecond, DefaultMaxRequestsPerSecond)
	}
	if cfg.RetryLimit != DefaultRetryLimit {
		t.Errorf("RetryLimit = %d, want %d", cfg.RetryLimit, DefaultRetryLimit)
	}
	if cfg.RetryInterval.Duration() != DefaultRetryInterval {
		t.Errorf("RetryInterval = %v, want %v", cfg.RetryInterval.Duration(), DefaultRetryInterval)
	}
	if cfg.Tick.Duration() != DefaultTick {
		t.Errorf("Tick = %v, want %v", cfg.Tick.Duration(), DefaultTick)
	}
	if cfg.FetchTimeout.Duration() != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want %v", cfg.FetchTimeout.Duration(), DefaultFetchTimeout)
	}
	if cfg.RenderInterval.Duration() != DefaultRenderInterval {
		t.Errorf("RenderInterval = %v, want %v", cfg.RenderInterval.Duration(), DefaultRenderInterval)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Fetcher != FetcherHTTP {
		t.Errorf("Fetcher = %q, want %q", cfg.Fetcher, FetcherHTTP)
	}
	if cfg.Classifier.Type != "default" {
		t.Errorf("Classifier.Type = %q, want default", cfg.Classifier.Type)
	}
	if cfg.NamesFile != DefaultNamesFile {
		t.Errorf("NamesFile = %q, want %q", cfg.NamesFile, DefaultNamesFile)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Friday streams
max_workers: 4
max_requests_per_second: 10
retry_limit: 3
retry_interval: 2s
tick: 50ms
fetch_timeout: 5s
render_interval: 1s
base_url: http://localhost:9000
fetcher: browser
classifier: marker:isLive
names_file: my_list.txt
names: [alice, bob]
listen: 127.0.0.1:8080
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Friday streams" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.MaxWorkers != 4 || cfg.MaxRequestsPerSecond != 10 || cfg.RetryLimit != 3 {
		t.Errorf("limits = %d/%d/%d, want 4/10/3", cfg.MaxWorkers, cfg.MaxRequestsPerSecond, cfg.RetryLimit)
	}
	if cfg.RetryInterval.Duration() != 2*time.Second {
		t.Errorf("RetryInterval = %v, want 2s", cfg.RetryInterval.Duration())
	}
	if cfg.Tick.Duration() != 50*time.Millisecond {
		t.Errorf("Tick = %v, want 50ms", cfg.Tick.Duration())
	}
	if cfg.FetchTimeout.Duration() != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout.Duration())
	}
	if cfg.RenderInterval.Duration() != time.Second {
		t.Errorf("RenderInterval = %v, want 1s", cfg.RenderInterval.Duration())
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Fetcher != FetcherBrowser {
		t.Errorf("Fetcher = %q, want %q", cfg.Fetcher, FetcherBrowser)
	}
	if cfg.Classifier.Type != "marker" || cfg.Classifier.Marker != "isLive" {
		t.Errorf("Classifier = %+v, want marker:isLive", cfg.Classifier)
	}
	if cfg.NamesFile != "my_list.txt" {
		t.Errorf("NamesFile = %q", cfg.NamesFile)
	}
	if len(cfg.Names) != 2 || cfg.Names[0] != "alice" || cfg.Names[1] != "bob" {
		t.Errorf("Names = %v, want [alice bob]", cfg.Names)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
}

func TestParse_InlineNamesSkipDefaultFile(t *testing.T) {
	cfg, err := Parse([]byte("names: [alice]\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.NamesFile != "" {
		t.Errorf("NamesFile = %q, want empty when names are inline", cfg.NamesFile)
	}
}

func TestParse_ClassifierShorthand(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantType   string
		wantMarker string
		wantErr    bool
	}{
		{"default", "default", "default", "", false},
		{"mention", "mention", "mention", "", false},
		{"marker", "marker:isLiveBroadcast", "marker", "isLiveBroadcast", false},
		{"marker with colon", "marker:a:b", "marker", "a:b", false},
		{"empty marker", "'marker:'", "", "", true},
		{"unknown type", "regex:foo", "", "", true},
		{"unknown shorthand", "magic", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte("classifier: " + tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.Classifier.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", cfg.Classifier.Type, tt.wantType)
			}
			if cfg.Classifier.Marker != tt.wantMarker {
				t.Errorf("Marker = %q, want %q", cfg.Classifier.Marker, tt.wantMarker)
			}
		})
	}
}

func TestParse_ClassifierStructured(t *testing.T) {
	yaml := `
classifier:
  type: marker
  marker: isLiveBroadcast
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Classifier.Type != "marker" || cfg.Classifier.Marker != "isLiveBroadcast" {
		t.Errorf("Classifier = %+v", cfg.Classifier)
	}
}

func TestParse_ClassifierInvalidKind(t *testing.T) {
	_, err := Parse([]byte("classifier: [a, b]\n"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("LIVECHECK_TEST_BASE", "http://mirror.local")
	t.Setenv("LIVECHECK_TEST_PORT", "9191")

	yaml := `
base_url: ${LIVECHECK_TEST_BASE}
listen: :${LIVECHECK_TEST_PORT}
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.BaseURL != "http://mirror.local" {
		t.Errorf("BaseURL = %q, want http://mirror.local", cfg.BaseURL)
	}
	if cfg.Listen != ":9191" {
		t.Errorf("Listen = %q, want :9191", cfg.Listen)
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	cfg, err := Parse([]byte("base_url: ${LIVECHECK_UNSET_VAR:-https://example.com}\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.BaseURL != "https://example.com" {
		t.Errorf("BaseURL = %q, want https://example.com", cfg.BaseURL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	_, err := Parse([]byte("base_url: ${LIVECHECK_MISSING_VAR}\n"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "LIVECHECK_MISSING_VAR") {
		t.Errorf("error = %v, should name the variable", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"negative workers", "max_workers: -1", "max_workers"},
		{"negative rps", "max_requests_per_second: -2", "max_requests_per_second"},
		{"negative retry limit", "retry_limit: -1", "retry_limit"},
		{"retry interval too short", "retry_interval: 10ms", "retry_interval"},
		{"negative tick", "tick: -1s", "tick"},
		{"negative fetch timeout", "fetch_timeout: -1s", "fetch_timeout"},
		{"negative render interval", "render_interval: -1s", "render_interval"},
		{"bad scheme", "base_url: ftp://example.com", "scheme"},
		{"no scheme", "base_url: www.twitch.tv", "scheme"},
		{"no host", "base_url: 'https://'", "host"},
		{"unknown fetcher", "fetcher: curl", "fetcher"},
		{"invalid inline name", "names: [ok_name, 'bad-name']", "names[1]"},
		{"structured marker without marker", "classifier: {type: marker}", "marker"},
		{"structured unknown type", "classifier: {type: regex}", "unknown classifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("max_workers: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "10s", 10 * time.Second, false},
		{"milliseconds", "1500ms", 1500 * time.Millisecond, false},
		{"minutes", "2m", 2 * time.Minute, false},
		{"combined", "1m30s", 90 * time.Second, false},
		{"invalid", "not-a-duration", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte("retry_interval: " + tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if cfg.RetryInterval.Duration() != tt.want {
				t.Errorf("RetryInterval = %v, want %v", cfg.RetryInterval.Duration(), tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livecheck.yaml")
	if err := os.WriteFile(path, []byte("max_workers: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxWorkers != 3 {
		t.Errorf("MaxWorkers = %d, want 3", cfg.MaxWorkers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	var fileErr *FileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("Load() error = %v, want *FileError", err)
	}
	if fileErr.ExitCode() != ExitNoInput {
		t.Errorf("ExitCode() = %d, want %d", fileErr.ExitCode(), ExitNoInput)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}
