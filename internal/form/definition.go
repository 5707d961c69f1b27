package form

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrFormNotFound is returned when a page does not contain the requested form.
var ErrFormNotFound = errors.New("form not found")

// FieldDef describes one named control of a form.
type FieldDef struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type,omitempty"` // input type: text, email, password, hidden, file, ...
	Label    string `yaml:"label,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Accept   string `yaml:"accept,omitempty"` // file inputs only
	Value    string `yaml:"value,omitempty"`  // default value, e.g. a CSRF token
}

// IsFile reports whether the field is a file input.
func (f FieldDef) IsFile() bool {
	return strings.EqualFold(f.Type, "file")
}

// IsSecret reports whether the field should be masked when prompted or printed.
func (f FieldDef) IsSecret() bool {
	return strings.EqualFold(f.Type, "password")
}

// Definition is a form bound to an endpoint.
type Definition struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Action string     `yaml:"action"`
	Method string     `yaml:"method,omitempty"`
	Fields []FieldDef `yaml:"fields"`
}

// Field returns the definition of the named field.
func (d *Definition) Field(name string) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Merge overlays discovered onto d: fields missing from d are appended in
// discovered order, and default values, action and method from the live
// page win. The result is a new definition.
func (d *Definition) Merge(discovered *Definition) *Definition {
	out := *d
	out.Fields = append([]FieldDef(nil), d.Fields...)
	if discovered == nil {
		return &out
	}
	if discovered.Action != "" {
		out.Action = discovered.Action
	}
	if discovered.Method != "" {
		out.Method = discovered.Method
	}
	for _, df := range discovered.Fields {
		found := false
		for i := range out.Fields {
			if out.Fields[i].Name != df.Name {
				continue
			}
			found = true
			if df.Value != "" {
				out.Fields[i].Value = df.Value
			}
			if df.Required {
				out.Fields[i].Required = true
			}
			if df.Accept != "" {
				out.Fields[i].Accept = df.Accept
			}
			break
		}
		if !found {
			out.Fields = append(out.Fields, df)
		}
	}
	return &out
}

// Definitions is a set of form definitions keyed by name.
type Definitions map[string]*Definition

type definitionsFile struct {
	Forms []*Definition `yaml:"forms"`
}

// LoadDefinitions parses a YAML document of the form:
//
//	forms:
//	  - id: signupForm
//	    name: signup
//	    action: /signup
//	    fields: [...]
func LoadDefinitions(data []byte) (Definitions, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse form definitions: %w", err)
	}
	defs := make(Definitions, len(file.Forms))
	for i, def := range file.Forms {
		if def == nil || def.Name == "" {
			return nil, fmt.Errorf("form definition %d has no name", i)
		}
		if _, dup := defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate form definition %q", def.Name)
		}
		if def.Method == "" {
			def.Method = "POST"
		}
		defs[def.Name] = def
	}
	return defs, nil
}

// Marshal renders definitions back to YAML in the LoadDefinitions format.
func Marshal(defs ...*Definition) ([]byte, error) {
	out, err := yaml.Marshal(definitionsFile{Forms: defs})
	if err != nil {
		return nil, fmt.Errorf("could not marshal form definitions: %w", err)
	}
	return out, nil
}
