package form

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrConstraint matches every ValidationError.
var ErrConstraint = errors.New("constraint violated")

// ValidationError reports the first control that fails its native constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrConstraint) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrConstraint
}

// Validate applies the constraints a browser enforces before it fires the
// submit event: required, type=email and accept. Nothing else is checked;
// entries that have no definition pass through untouched.
func Validate(def *Definition, data *Data) error {
	if def == nil {
		return nil
	}
	for _, f := range def.Fields {
		entry, present := data.Get(f.Name)

		if f.IsFile() {
			empty := !present || entry.File == nil || len(entry.File.Data) == 0
			if empty {
				if f.Required {
					return &ValidationError{Field: f.Name, Reason: "a file is required"}
				}
				continue
			}
			if f.Accept != "" && !accepts(f.Accept, entry.File) {
				return &ValidationError{Field: f.Name, Reason: fmt.Sprintf("file type %s is not accepted (%s)", fileType(entry.File), f.Accept)}
			}
			continue
		}

		if rules := textRules(f); rules != "" {
			if err := validate.Var(entry.Value, rules); err != nil {
				return constraintError(f.Name, err)
			}
		}
	}
	return nil
}

// htmlEmailTag checks the HTML "valid e-mail address" production, which is
// what a browser enforces on type=email controls.
const htmlEmailTag = "html_email"

var htmlEmailRegexp = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(htmlEmailTag, func(fl validator.FieldLevel) bool {
		return htmlEmailRegexp.MatchString(fl.Field().String())
	}); err != nil {
		panic("failed to register " + htmlEmailTag + ": " + err.Error())
	}
	return v
}

// textRules returns the validator tags of a text control.
func textRules(f FieldDef) string {
	var rules []string
	if f.Required {
		rules = append(rules, "required")
	} else {
		rules = append(rules, "omitempty")
	}
	if strings.EqualFold(f.Type, "email") {
		rules = append(rules, htmlEmailTag)
	}
	if len(rules) == 1 && rules[0] == "omitempty" {
		return ""
	}
	return strings.Join(rules, ",")
}

func constraintError(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: field, Reason: err.Error()}
	}
	switch verrs[0].Tag() {
	case "required":
		return &ValidationError{Field: field, Reason: "a value is required"}
	case htmlEmailTag:
		return &ValidationError{Field: field, Reason: "not a valid email address"}
	}
	return &ValidationError{Field: field, Reason: "failed " + verrs[0].Tag()}
}

func fileType(f *File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return http.DetectContentType(f.Data)
}

// accepts evaluates an accept attribute: comma separated MIME types,
// type/* wildcards and .ext suffixes.
func accepts(accept string, f *File) bool {
	mediaType, _, err := mime.ParseMediaType(fileType(f))
	if err != nil {
		mediaType = ""
	}
	ext := strings.ToLower(filepath.Ext(f.Filename))

	for _, token := range strings.Split(accept, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		switch {
		case token == "":
			continue
		case strings.HasPrefix(token, "."):
			if ext == token {
				return true
			}
		case strings.HasSuffix(token, "/*"):
			if mediaType != "" && strings.HasPrefix(mediaType, strings.TrimSuffix(token, "*")) {
				return true
			}
		default:
			if mediaType == token {
				return true
			}
		}
	}
	return false
}
