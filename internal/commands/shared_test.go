package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/iris-platform/iris-go/internal/config"
	"github.com/iris-platform/iris-go/pkg/iris"
)

// clearIRISEnv makes sure a developer's own credentials never leak into a test.
func clearIRISEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"IRIS_API_KEY", "IRIS_USER_ID", "IRIS_BASE_URL", "IRIS_CONFIG"} {
		t.Setenv(key, "")
	}
}

func writeCredentials(t *testing.T, creds config.Credentials) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.FileName)
	config.SetPath(path)
	t.Cleanup(func() { config.SetPath("") })
	if err := creds.Save(); err != nil {
		t.Fatalf("saving credentials: %v", err)
	}
	return path
}

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var g globalOptions
	g.bind(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return fs
}

func TestResolveSettings_FileOnly(t *testing.T) {
	clearIRISEnv(t)
	path := writeCredentials(t, config.Credentials{APIKey: "file-key", UserID: 1, BaseURL: "http://file.example"})

	s, err := resolveSettings(newFlagSet(t))
	if err != nil {
		t.Fatalf("resolveSettings() error: %v", err)
	}
	if s.APIKey != "file-key" || s.UserID != 1 || s.BaseURL != "http://file.example" {
		t.Errorf("settings = %+v, want file values", s)
	}
	if s.Source != path {
		t.Errorf("Source = %q, want %q", s.Source, path)
	}
}

func TestResolveSettings_EnvOverridesFile(t *testing.T) {
	clearIRISEnv(t)
	writeCredentials(t, config.Credentials{APIKey: "file-key", UserID: 1, BaseURL: "http://file.example"})
	t.Setenv("IRIS_API_KEY", "env-key")
	t.Setenv("IRIS_USER_ID", "2")

	s, err := resolveSettings(newFlagSet(t))
	if err != nil {
		t.Fatalf("resolveSettings() error: %v", err)
	}
	if s.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", s.APIKey)
	}
	if s.UserID != 2 {
		t.Errorf("UserID = %d, want 2", s.UserID)
	}
	if s.BaseURL != "http://file.example" {
		t.Errorf("BaseURL = %q, want file value", s.BaseURL)
	}
	if s.Source != "IRIS_API_KEY" {
		t.Errorf("Source = %q, want IRIS_API_KEY", s.Source)
	}
}

func TestResolveSettings_FlagOverridesEnv(t *testing.T) {
	clearIRISEnv(t)
	writeCredentials(t, config.Credentials{APIKey: "file-key", UserID: 1})
	t.Setenv("IRIS_API_KEY", "env-key")
	t.Setenv("IRIS_USER_ID", "2")

	s, err := resolveSettings(newFlagSet(t, "--api-key", "flag-key", "--user-id", "3"))
	if err != nil {
		t.Fatalf("resolveSettings() error: %v", err)
	}
	if s.APIKey != "flag-key" || s.UserID != 3 {
		t.Errorf("settings = %+v, want flag values", s)
	}
	if s.Source != "--api-key flag" {
		t.Errorf("Source = %q", s.Source)
	}
}

func TestResolveSettings_InvalidUserID(t *testing.T) {
	clearIRISEnv(t)
	writeCredentials(t, config.Credentials{APIKey: "file-key", UserID: 1})
	t.Setenv("IRIS_USER_ID", "abc")

	_, err := resolveSettings(newFlagSet(t))
	if err == nil {
		t.Fatal("expected error for non-numeric IRIS_USER_ID")
	}
	if !strings.Contains(err.Error(), `"abc"`) {
		t.Errorf("error = %q, want it to name the value", err)
	}
}

func TestParseUserID(t *testing.T) {
	tests := []struct {
		raw     any
		want    int
		wantErr bool
	}{
		{nil, 0, false},
		{"", 0, false},
		{" 42 ", 42, false},
		{7, 7, false},
		{"12abc", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		got, err := parseUserID(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseUserID(%#v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseUserID(%#v) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestResolveSettings_NoCredentialFile(t *testing.T) {
	clearIRISEnv(t)
	config.SetPath(filepath.Join(t.TempDir(), "missing.yaml"))
	defer config.SetPath("")

	s, err := resolveSettings(newFlagSet(t))
	if err != nil {
		t.Fatalf("resolveSettings() error: %v", err)
	}
	if s.APIKey != "" || s.Source != "none" {
		t.Errorf("settings = %+v, want empty", s)
	}
	if _, err := newIRISClient(s); err == nil || !strings.Contains(err.Error(), "iris login") {
		t.Errorf("newIRISClient() error = %v, want login hint", err)
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "user id required",
			err:  fmt.Errorf("listing: %w", iris.ErrUserIDRequired),
			want: []string{"user id is required", "--user-id"},
		},
		{
			name: "authentication",
			err:  &iris.AuthenticationError{APIError: iris.APIError{StatusCode: 401, Message: "bad key", RequestID: "req-1"}},
			want: []string{"authentication failed (HTTP 401): bad key", "iris login", "Request ID: req-1"},
		},
		{
			name: "validation",
			err: &iris.ValidationError{APIError: iris.APIError{
				StatusCode:  422,
				Message:     "The given data was invalid.",
				FieldErrors: map[string][]string{"name": {"required"}, "email": {"invalid"}},
			}},
			want: []string{"validation failed", "\n  email: invalid\n  name: required"},
		},
		{
			name: "timeout",
			err:  &iris.TimeoutError{WorkflowID: "wf-9"},
			want: []string{"iris chat:status wf-9"},
		},
		{
			name: "workflow failed",
			err:  &iris.WorkflowFailedError{WorkflowID: "wf-1", Reason: "boom"},
			want: []string{"workflow wf-1 failed: boom"},
		},
		{
			name: "network",
			err:  &iris.NetworkError{Method: "GET", URL: "http://127.0.0.1:1/x", Err: errors.New("connection refused")},
			want: []string{"could not reach http://127.0.0.1:1/x: connection refused"},
		},
		{
			name: "api error",
			err:  &iris.APIError{StatusCode: 404, Message: "Lead not found"},
			want: []string{"IRIS error (404): Lead not found"},
		},
		{
			name: "not found",
			err:  &iris.APIError{StatusCode: 404, Message: "Lead not found"},
			want: []string{"Check the id"},
		},
		{
			name: "rate limited",
			err:  fmt.Errorf("listing leads: %w", &iris.APIError{StatusCode: 429, Message: "Too Many Attempts.", RequestID: "req-9"}),
			want: []string{"IRIS error (429)", "wait a moment", "Request ID: req-9"},
		},
		{
			name: "plain",
			err:  errors.New("something else"),
			want: []string{"something else"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(tt.err)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, want containing %q", got, want)
				}
			}
		})
	}
}

func TestParseKeyValues(t *testing.T) {
	got, err := parseKeyValues([]string{"team=sales", "note=a=b"})
	if err != nil {
		t.Fatalf("parseKeyValues() error: %v", err)
	}
	if got["team"] != "sales" || got["note"] != "a=b" {
		t.Errorf("parseKeyValues() = %v", got)
	}

	if _, err := parseKeyValues([]string{"novalue"}); err == nil {
		t.Error("expected error for pair without '='")
	}
	if got, _ := parseKeyValues(nil); got != nil {
		t.Errorf("parseKeyValues(nil) = %v, want nil", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"a  b\n c", 10, "a b c"},
		{"abcdefghij", 8, "abcde..."},
		{"héllo wörld", 7, "héll..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.25, "25%"},
		{1, "100%"},
		{50, "50%"},
		{100, "100%"},
		{250, "100%"},
		{-0.5, "0%"},
	}
	for _, tt := range tests {
		if got := formatPercent(tt.in); got != tt.want {
			t.Errorf("formatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
