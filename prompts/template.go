package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingVariable is returned by Format when a placeholder has no value.
var ErrMissingVariable = errors.New("missing template variable")

// Template is a prompt with {name} placeholders.
// "{{" and "}}" render as literal braces.
type Template struct {
	Text           string
	InputVariables []string
}

// Parse extracts the placeholders of text in order of first appearance.
//
// Example:
//
//	tmpl, err := prompts.Parse("Current conversation:\n{history}\nHuman: {input}\nAI:")
//	// tmpl.InputVariables == []string{"history", "input"}
func Parse(text string) (Template, error) {
	var vars []string
	seen := make(map[string]bool)

	err := scan(text, func(literal string) {}, func(name string) error {
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
		return nil
	})
	if err != nil {
		return Template{}, err
	}

	return Template{Text: text, InputVariables: vars}, nil
}

// MustParse is like Parse but panics on a malformed template.
// It is meant for package-level templates.
func MustParse(text string) Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Format substitutes every placeholder with its value.
func (t Template) Format(values map[string]string) (string, error) {
	var sb strings.Builder
	err := scan(t.Text, func(literal string) {
		sb.WriteString(literal)
	}, func(name string) error {
		v, ok := values[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingVariable, name)
		}
		sb.WriteString(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// HasVariable reports whether the template uses the named placeholder.
func (t Template) HasVariable(name string) bool {
	for _, v := range t.InputVariables {
		if v == name {
			return true
		}
	}
	return false
}

// scan walks text calling literal for plain text and variable for each {name}.
func scan(text string, literal func(string), variable func(string) error) error {
	for i := 0; i < len(text); {
		switch c := text[i]; {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			literal("{")
			i += 2
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			literal("}")
			i += 2
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			name := strings.TrimSpace(text[i+1 : i+1+end])
			if name == "" {
				return fmt.Errorf("empty placeholder at offset %d", i)
			}
			if err := variable(name); err != nil {
				return err
			}
			i += end + 2
		case c == '}':
			return fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			next := strings.IndexAny(text[i:], "{}")
			if next < 0 {
				literal(text[i:])
				return nil
			}
			literal(text[i : i+next])
			i += next
		}
	}
	return nil
}
