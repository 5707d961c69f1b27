package stub

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/faceauth/internal/authclient"
)

// Rule scripts the answer to submissions of one form. A rule applies when
// every Match entry equals the submitted field value.
type Rule struct {
	Form   string             `yaml:"form"`
	Match  map[string]string  `yaml:"match,omitempty"`
	Status int                `yaml:"status,omitempty"` // defaults to 200
	Result *authclient.Result `yaml:"result,omitempty"`
	Body   string             `yaml:"body,omitempty"` // raw body, sent instead of Result
	Delay  time.Duration      `yaml:"delay,omitempty"`
}

// Scenario is the script of a stub run.
type Scenario struct {
	CSRF  bool   `yaml:"csrf"` // reject submissions without the page's csrf_token
	Rules []Rule `yaml:"rules"`
}

// defaultRedirects are the locations the real server sends users to after
// each successful form.
var defaultRedirects = map[string]string{
	FormSignup:   "/login",
	FormLogin:    "/dashboard",
	FormFaceScan: "/face_recognize",
}

// LoadScenario reads a scenario file. An empty path yields the empty scenario.
func LoadScenario(path string) (*Scenario, error) {
	if path == "" {
		return &Scenario{}, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided scenario path
	if err != nil {
		return nil, fmt.Errorf("could not read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses a scenario YAML document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("could not parse scenario: %w", err)
	}
	for i, r := range s.Rules {
		if _, ok := defaultRedirects[r.Form]; !ok {
			return nil, fmt.Errorf("rule %d: unknown form %q", i, r.Form)
		}
		if r.Result == nil && r.Body == "" {
			return nil, fmt.Errorf("rule %d: needs a result or a body", i)
		}
	}
	return &s, nil
}

// Answer returns the rule for a submission: the first matching rule, or a
// success redirecting where the real server would.
func (s *Scenario) Answer(formName string, fields map[string]string) Rule {
	for _, r := range s.Rules {
		if r.Form == formName && matches(r.Match, fields) {
			if r.Status == 0 {
				r.Status = http.StatusOK
			}
			return r
		}
	}
	result := authclient.Succeeded(defaultRedirects[formName])
	return Rule{Form: formName, Status: http.StatusOK, Result: &result}
}

func matches(want, fields map[string]string) bool {
	for k, v := range want {
		if fields[k] != v {
			return false
		}
	}
	return true
}
