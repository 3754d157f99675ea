package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", FileName)
	SetPath(path)
	t.Cleanup(func() { SetPath("") })
	return path
}

func TestLoadAndSave(t *testing.T) {
	path := useTempPath(t)

	creds := &Credentials{
		APIKey:  "sk_test_1234567890",
		UserID:  42,
		BaseURL: "http://localhost:8080",
	}
	if err := creds.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("credential file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %o, want 600", info.Mode().Perm())
	}
	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if dirInfo.Mode().Perm() != 0700 {
		t.Errorf("dir mode = %o, want 700", dirInfo.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Generated by: iris login") {
		t.Errorf("missing header, got: %s", data)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *loaded != *creds {
		t.Errorf("Load() = %+v, want %+v", *loaded, *creds)
	}
}

func TestLoadNotFound(t *testing.T) {
	useTempPath(t)

	_, err := Load()
	if !os.IsNotExist(err) {
		t.Errorf("Load() error = %v, want not-exist", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := useTempPath(t)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("api_key: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("Load() error = %v, want parsing error", err)
	}
}

func TestGetPathPrecedence(t *testing.T) {
	t.Setenv(EnvPath, "/tmp/from-env.yaml")

	path, err := GetPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/from-env.yaml" {
		t.Errorf("GetPath() = %q, want env path", path)
	}

	SetPath("/tmp/custom.yaml")
	defer SetPath("")
	path, _ = GetPath()
	if path != "/tmp/custom.yaml" {
		t.Errorf("GetPath() = %q, want custom path", path)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != FileName || filepath.Base(filepath.Dir(path)) != "iris" {
		t.Errorf("DefaultPath() = %q", path)
	}
}

func TestRemove(t *testing.T) {
	path := useTempPath(t)

	// Missing file is fine.
	if _, err := Remove(); err != nil {
		t.Fatalf("Remove() on missing file: %v", err)
	}

	if err := (&Credentials{APIKey: "k"}).Save(); err != nil {
		t.Fatal(err)
	}
	removed, err := Remove()
	if err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if removed != path {
		t.Errorf("Remove() path = %q, want %q", removed, path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{"valid", Credentials{APIKey: "k", UserID: 1, BaseURL: "https://api.example.com"}, ""},
		{"no base url", Credentials{APIKey: "k"}, ""},
		{"missing key", Credentials{APIKey: "  "}, "api_key"},
		{"negative user", Credentials{APIKey: "k", UserID: -1}, "user_id"},
		{"bad url", Credentials{APIKey: "k", BaseURL: "ftp://x"}, "base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := map[string]string{
		"sk_live_abcdef123456": "sk_l************3456",
		"short":                "*****",
		"":                     "",
	}
	for in, want := range tests {
		if got := MaskAPIKey(in); got != want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", in, got, want)
		}
	}
}
