package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/faceauth/internal/form"
)

//go:embed forms.yaml
var formsYAML []byte

// Form names used by the built-in definitions.
const (
	FormSignup   = "signup"
	FormLogin    = "login"
	FormFaceScan = "face scan"
)

type Config struct {
	Server  ServerConfig
	Client  ClientConfig
	Capture CaptureConfig
	Stub    StubConfig
}

type ServerConfig struct {
	URL       string // base URL of the face-auth server, defaults to http://localhost:5000
	FormsPath string // optional YAML file overriding the embedded form definitions
}

type ClientConfig struct {
	CaptureDir string        // save raw endpoint responses here (optional)
	Timeout    time.Duration // zero means no client-side timeout
}

type CaptureConfig struct {
	MaxImageSize int // downscale face captures to this many pixels per side, 0 keeps the file as is
}

type StubConfig struct {
	Host         string // defaults to 127.0.0.1
	Port         int    // defaults to 5000
	ScenarioPath string // YAML scenario file (optional)

	SessionSecret  string   // signs CSRF tokens, random per run when empty
	AllowedOrigins []string // extra browser origins besides localhost
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable, falling back to defaultVal when empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			URL:       envString("FACEAUTH_URL", "http://localhost:5000"),
			FormsPath: os.Getenv("FACEAUTH_FORMS"),
		},
		Client: ClientConfig{
			CaptureDir: os.Getenv("FACEAUTH_CAPTURE_DIR"),
			Timeout:    time.Duration(envInt("FACEAUTH_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Capture: CaptureConfig{
			MaxImageSize: envInt("FACEAUTH_MAX_IMAGE_SIZE", 0),
		},
		Stub: StubConfig{
			Host:         envString("STUB_HOST", "127.0.0.1"),
			Port:         envInt("STUB_PORT", 5000),
			ScenarioPath: os.Getenv("STUB_SCENARIO"),

			SessionSecret:  os.Getenv("STUB_SESSION_SECRET"),
			AllowedOrigins: envList("STUB_ALLOWED_ORIGINS"),
		},
	}
}

// BuiltinForms returns the embedded form definitions.
func BuiltinForms() form.Definitions {
	defs, err := form.LoadDefinitions(formsYAML)
	if err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to parse embedded forms.yaml: " + err.Error())
	}
	return defs
}

// Forms returns the form definitions in effect: the embedded ones, with
// definitions from FormsPath replacing those of the same name.
func (c *Config) Forms() (form.Definitions, error) {
	defs := BuiltinForms()
	if c.Server.FormsPath == "" {
		return defs, nil
	}

	data, err := os.ReadFile(c.Server.FormsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read form definitions: %w", err)
	}
	overrides, err := form.LoadDefinitions(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Server.FormsPath, err)
	}
	for name, def := range overrides {
		defs[name] = def
	}
	return defs, nil
}

// Form returns a single definition by name.
func (c *Config) Form(name string) (*form.Definition, error) {
	defs, err := c.Forms()
	if err != nil {
		return nil, err
	}
	def, ok := defs[name]
	if !ok {
		return nil, fmt.Errorf("no form definition named %q", name)
	}
	return def, nil
}
