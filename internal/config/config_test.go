package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FACEAUTH_URL", "")
	t.Setenv("FACEAUTH_TIMEOUT_SECONDS", "")
	t.Setenv("STUB_PORT", "")
	t.Setenv("STUB_HOST", "")

	cfg := Load()

	if cfg.Server.URL != "http://localhost:5000" {
		t.Errorf("expected default URL, got '%s'", cfg.Server.URL)
	}
	if cfg.Client.Timeout != 0 {
		t.Errorf("expected no timeout by default, got %s", cfg.Client.Timeout)
	}
	if cfg.Stub.Port != 5000 {
		t.Errorf("expected default stub port 5000, got %d", cfg.Stub.Port)
	}
	if cfg.Stub.Host != "127.0.0.1" {
		t.Errorf("expected default stub host, got '%s'", cfg.Stub.Host)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FACEAUTH_URL", "https://auth.example.com")
	t.Setenv("FACEAUTH_CAPTURE_DIR", "/tmp/capture")
	t.Setenv("FACEAUTH_TIMEOUT_SECONDS", "15")
	t.Setenv("FACEAUTH_MAX_IMAGE_SIZE", "640")
	t.Setenv("STUB_PORT", "8088")
	t.Setenv("STUB_SCENARIO", "scenario.yaml")

	cfg := Load()

	if cfg.Server.URL != "https://auth.example.com" {
		t.Errorf("expected URL from env, got '%s'", cfg.Server.URL)
	}
	if cfg.Client.CaptureDir != "/tmp/capture" {
		t.Errorf("expected capture dir from env, got '%s'", cfg.Client.CaptureDir)
	}
	if cfg.Client.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %s", cfg.Client.Timeout)
	}
	if cfg.Capture.MaxImageSize != 640 {
		t.Errorf("expected max image size 640, got %d", cfg.Capture.MaxImageSize)
	}
	if cfg.Stub.Port != 8088 {
		t.Errorf("expected stub port 8088, got %d", cfg.Stub.Port)
	}
	if cfg.Stub.ScenarioPath != "scenario.yaml" {
		t.Errorf("expected scenario path, got '%s'", cfg.Stub.ScenarioPath)
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("STUB_ALLOWED_ORIGINS", " http://dev.test:3000, ,https://app.test ")

	cfg := Load()

	want := []string{"http://dev.test:3000", "https://app.test"}
	if !slices.Equal(cfg.Stub.AllowedOrigins, want) {
		t.Errorf("expected origins %v, got %v", want, cfg.Stub.AllowedOrigins)
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("FACEAUTH_TIMEOUT_SECONDS", "soon")

	if timeout := Load().Client.Timeout; timeout != 0 {
		t.Errorf("expected invalid timeout to fall back to 0, got %s", timeout)
	}
}

func TestLoad_NegativeMaxImageSize(t *testing.T) {
	t.Setenv("FACEAUTH_MAX_IMAGE_SIZE", "-10")

	if size := Load().Capture.MaxImageSize; size != 0 {
		t.Errorf("expected negative size to fall back to 0, got %d", size)
	}
}

func TestBuiltinForms(t *testing.T) {
	defs := BuiltinForms()

	for _, name := range []string{FormSignup, FormLogin, FormFaceScan} {
		if _, ok := defs[name]; !ok {
			t.Errorf("expected built-in form %q", name)
		}
	}

	signup := defs[FormSignup]
	if signup.Action != "/signup" || signup.ID != "signupForm" {
		t.Errorf("unexpected signup binding: %s #%s", signup.Action, signup.ID)
	}
	for _, field := range []string{"name", "email", "password"} {
		f, ok := signup.Field(field)
		if !ok || !f.Required {
			t.Errorf("expected required signup field %q", field)
		}
	}

	image, ok := defs[FormFaceScan].Field("image")
	if !ok || !image.IsFile() || image.Accept != "image/*" {
		t.Errorf("expected face scan image file field, got %+v", image)
	}
}

func TestForms_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.yaml")
	doc := "forms:\n  - id: loginForm\n    name: login\n    action: /api/login\n    fields:\n      - name: username\n        required: true\n"
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("failed to write forms file: %v", err)
	}

	cfg := &Config{Server: ServerConfig{FormsPath: path}}

	login, err := cfg.Form(FormLogin)
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}
	if login.Action != "/api/login" {
		t.Errorf("expected override action, got '%s'", login.Action)
	}

	if _, err := cfg.Form(FormSignup); err != nil {
		t.Errorf("expected built-in signup to remain available: %v", err)
	}
}

func TestForms_MissingFile(t *testing.T) {
	cfg := &Config{Server: ServerConfig{FormsPath: filepath.Join(t.TempDir(), "missing.yaml")}}

	if _, err := cfg.Forms(); err == nil {
		t.Fatal("expected error for missing forms file")
	}
}

func TestForm_Unknown(t *testing.T) {
	cfg := &Config{}

	if _, err := cfg.Form("register"); err == nil {
		t.Fatal("expected error for unknown form")
	}
}
