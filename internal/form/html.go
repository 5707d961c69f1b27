package form

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML reads an HTML page and returns the definition of the form whose
// id attribute is formID. Named input, select and textarea controls are
// collected in document order. Buttons and unnamed controls are skipped.
func ParseHTML(r io.Reader, formID string) (*Definition, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse html: %w", err)
	}

	node := findForm(doc, formID)
	if node == nil {
		return nil, fmt.Errorf("%w: #%s", ErrFormNotFound, formID)
	}

	def := &Definition{
		ID:     formID,
		Name:   attr(node, "name"),
		Action: attr(node, "action"),
		Method: strings.ToUpper(attr(node, "method")),
	}
	if def.Method == "" {
		def.Method = "GET"
	}
	collectFields(node, def)
	return def, nil
}

func findForm(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Form && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findForm(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectFields(n *html.Node, def *Definition) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if field, ok := fieldFromNode(c); ok {
			def.Fields = append(def.Fields, field)
		}
		// textarea and select children are content, not controls
		if c.DataAtom != atom.Textarea && c.DataAtom != atom.Select {
			collectFields(c, def)
		}
	}
}

func fieldFromNode(n *html.Node) (FieldDef, bool) {
	name := attr(n, "name")
	if name == "" {
		return FieldDef{}, false
	}
	_, required := lookupAttr(n, "required")

	switch n.DataAtom {
	case atom.Input:
		typ := strings.ToLower(attr(n, "type"))
		if typ == "" {
			typ = "text"
		}
		switch typ {
		case "submit", "button", "reset", "image":
			return FieldDef{}, false
		}
		return FieldDef{
			Name:     name,
			Type:     typ,
			Required: required,
			Accept:   attr(n, "accept"),
			Value:    attr(n, "value"),
			Label:    attr(n, "placeholder"),
		}, true
	case atom.Textarea:
		return FieldDef{Name: name, Type: "textarea", Required: required, Value: textContent(n)}, true
	case atom.Select:
		return FieldDef{Name: name, Type: "select", Required: required, Value: selectedOption(n)}, true
	}
	return FieldDef{}, false
}

func selectedOption(n *html.Node) string {
	first := ""
	var walk func(*html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == atom.Option {
				value, ok := lookupAttr(c, "value")
				if !ok {
					value = strings.TrimSpace(textContent(c))
				}
				if _, selected := lookupAttr(c, "selected"); selected {
					return value, true
				}
				if first == "" {
					first = value
				}
				continue
			}
			if v, ok := walk(c); ok {
				return v, true
			}
		}
		return "", false
	}
	if v, ok := walk(n); ok {
		return v
	}
	return first
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
