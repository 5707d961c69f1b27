package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kozaktomas/faceauth/internal/authclient"
	"github.com/kozaktomas/faceauth/internal/config"
	"github.com/kozaktomas/faceauth/internal/form"
	"github.com/kozaktomas/faceauth/internal/prompt"
	"github.com/kozaktomas/faceauth/internal/stub"
	"github.com/kozaktomas/faceauth/internal/submit"
)

// answers is a prompt.Driver replying from a map keyed by message.
type answers map[string]string

func (a answers) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	v, ok := a[cfg.Message]
	if !ok {
		return "", prompt.ErrAborted
	}
	return v, nil
}

func (a answers) Password(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	return a.Input(ctx, cfg)
}

func plainSubmit(ctx context.Context, c *submit.Controller, data *form.Data) submit.Outcome {
	return c.Submit(ctx, data)
}

func setupRun(t *testing.T, scenario *stub.Scenario) (*submitRun, *stub.Server, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	s := stub.NewServer(scenario, stub.Options{SessionSecret: "test"})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	var stdout, stderr bytes.Buffer
	cfg := &config.Config{}
	cfg.Server.URL = ts.URL
	return &submitRun{cfg: cfg, stdout: &stdout, stderr: &stderr, driver: answers{}}, s, &stdout, &stderr
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments("field", []string{"email=a@b.c", "note=x=y", "empty="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]string{{"email", "a@b.c"}, {"note", "x=y"}, {"empty", ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("assignments mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"novalue", "=value"} {
		if _, err := parseAssignments("field", []string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestOutcomeError(t *testing.T) {
	if err := outcomeError(submit.Outcome{State: submit.StateRedirected}); err != nil {
		t.Errorf("expected no error for redirect, got %v", err)
	}
	for _, state := range []submit.State{submit.StateRejected, submit.StateFailed, submit.StateBusy, submit.StateInvalid} {
		if err := outcomeError(submit.Outcome{State: state}); err == nil {
			t.Errorf("expected error for %s", state)
		}
	}

	cause := errors.New("boom")
	if err := outcomeError(submit.Outcome{State: submit.StateFailed, Err: cause}); !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestSubmitRun_SignupRedirect(t *testing.T) {
	run, s, stdout, _ := setupRun(t, nil)

	out, err := run.submit(context.Background(), submitOptions{
		formName: config.FormSignup,
		fields: [][2]string{
			{"name", "Alice Doe"},
			{"email", "alice@example.com"},
			{"password", "secret123"},
		},
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateRedirected || out.Location != "/login" {
		t.Errorf("expected redirect to /login, got %s %q", out.State, out.Location)
	}
	if !strings.Contains(stdout.String(), "redirect: "+run.cfg.Server.URL+"/login") {
		t.Errorf("expected redirect line, got %q", stdout.String())
	}

	subs := s.Submissions()
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
	want := map[string][]string{
		"name":     {"Alice Doe"},
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	}
	if diff := cmp.Diff(want, subs[0].Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRun_LoginRejectedAlerts(t *testing.T) {
	scenario := &stub.Scenario{Rules: []stub.Rule{{
		Form:   stub.FormLogin,
		Status: 401,
		Result: &authclient.Result{Message: "Invalid credentials"},
	}}}
	run, _, stdout, stderr := setupRun(t, scenario)

	out, err := run.submit(context.Background(), submitOptions{
		formName: config.FormLogin,
		fields:   [][2]string{{"email", "alice@example.com"}, {"password", "nope"}},
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateRejected {
		t.Errorf("expected rejected, got %s", out.State)
	}
	if !strings.Contains(stderr.String(), "alert: Login failed: Invalid credentials") {
		t.Errorf("expected alert on stderr, got %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no navigation output, got %q", stdout.String())
	}
}

func TestSubmitRun_DiscoverWithCSRF(t *testing.T) {
	run, _, _, _ := setupRun(t, &stub.Scenario{CSRF: true})

	out, err := run.submit(context.Background(), submitOptions{
		formName: config.FormLogin,
		fields:   [][2]string{{"email", "alice@example.com"}, {"password", "secret123"}},
		discover: true,
		follow:   true,
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateRedirected || out.Location != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %s %q (%v)", out.State, out.Location, out.Err)
	}
}

func TestSubmitRun_Interactive(t *testing.T) {
	run, s, _, _ := setupRun(t, nil)
	run.driver = answers{"Email:": "bob@example.com", "Password:": "pw"}
	run.cfg.Server.FormsPath = writeForms(t, `forms:
  - id: loginForm
    name: login
    action: /login
    fields:
      - {name: email, type: email, label: Email, required: true}
      - {name: password, type: password, label: Password, required: true}
`)

	out, err := run.submit(context.Background(), submitOptions{
		formName:    config.FormLogin,
		interactive: true,
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateRedirected {
		t.Errorf("expected redirect, got %s (%v)", out.State, out.Err)
	}
	if got := s.Submissions()[0].Fields["email"]; !cmp.Equal(got, []string{"bob@example.com"}) {
		t.Errorf("expected prompted email, got %v", got)
	}
}

func TestSubmitRun_InvalidNotSent(t *testing.T) {
	run, s, _, _ := setupRun(t, nil)

	out, err := run.submit(context.Background(), submitOptions{
		formName: config.FormLogin,
		fields:   [][2]string{{"email", "not-an-email"}, {"password", "x"}},
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateInvalid {
		t.Errorf("expected invalid, got %s", out.State)
	}
	if len(s.Submissions()) != 0 {
		t.Error("expected nothing to be sent")
	}
}

func TestSubmitRun_FaceScanFile(t *testing.T) {
	run, s, _, stderr := setupRun(t, &stub.Scenario{Rules: []stub.Rule{{
		Form:   stub.FormFaceScan,
		Result: &authclient.Result{Success: true, Redirect: "/face_recognize", Duplicate: true, PicName: "alice"},
	}}})

	path := filepath.Join(t.TempDir(), "face.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(path, png, 0600); err != nil {
		t.Fatalf("failed to write capture: %v", err)
	}

	out, err := run.submit(context.Background(), submitOptions{
		formName: config.FormFaceScan,
		fields:   [][2]string{{"pic_name", "alice"}},
		files:    [][2]string{{"image", path}},
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateRedirected {
		t.Errorf("expected redirect, got %s (%v)", out.State, out.Err)
	}
	if diff := cmp.Diff(map[string][]string{"image": {"face.png"}}, s.Submissions()[0].Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr.String(), `face already registered as "alice"`) {
		t.Errorf("expected duplicate warning, got %q", stderr.String())
	}
}

func TestSubmitRun_UnknownFieldWarns(t *testing.T) {
	run, s, _, stderr := setupRun(t, nil)

	_, err := run.submit(context.Background(), submitOptions{
		formName: config.FormLogin,
		fields: [][2]string{
			{"email", "alice@example.com"},
			{"password", "pw"},
			{"remember", "1"},
		},
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !strings.Contains(stderr.String(), `warning: field "remember"`) {
		t.Errorf("expected warning, got %q", stderr.String())
	}
	if got := s.Submissions()[0].Fields["remember"]; !cmp.Equal(got, []string{"1"}) {
		t.Errorf("expected unknown field to be sent unchanged, got %v", got)
	}
}

func TestSubmitRun_RelativeRedirectFromEndpoint(t *testing.T) {
	var visited []string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "redirect": "dashboard"}`))
	})
	mux.HandleFunc("/auth/dashboard", func(w http.ResponseWriter, r *http.Request) {
		visited = append(visited, r.URL.Path)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	var stdout, stderr bytes.Buffer
	cfg := &config.Config{}
	cfg.Server.URL = ts.URL
	cfg.Server.FormsPath = writeForms(t, `forms:
  - id: loginForm
    name: login
    action: /auth/login
    fields:
      - {name: email, type: email, required: true}
`)
	run := &submitRun{cfg: cfg, stdout: &stdout, stderr: &stderr, driver: answers{}}

	out, err := run.submit(context.Background(), submitOptions{
		formName: config.FormLogin,
		fields:   [][2]string{{"email", "alice@example.com"}},
		follow:   true,
	}, plainSubmit)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if out.State != submit.StateRedirected || out.Location != "dashboard" {
		t.Fatalf("expected redirect to dashboard, got %s %q (%v)", out.State, out.Location, out.Err)
	}
	if !strings.Contains(stdout.String(), "redirect: "+ts.URL+"/auth/dashboard") {
		t.Errorf("expected redirect resolved against the endpoint, got %q", stdout.String())
	}
	if diff := cmp.Diff([]string{"/auth/dashboard"}, visited); diff != "" {
		t.Errorf("visited mismatch (-want +got):\n%s", diff)
	}
}

func writeForms(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "forms.yaml")
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("failed to write forms: %v", err)
	}
	return path
}
