package llm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// PromptTemplate wraps a text/template parsed from an inline string.
type PromptTemplate struct {
	name string
	tmpl *template.Template
}

// NewPromptTemplate parses the template text under the given name.
func NewPromptTemplate(name, text string) (*PromptTemplate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt template %q is empty", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %q: %w", name, err)
	}
	return &PromptTemplate{name: name, tmpl: tmpl}, nil
}

// MustPromptTemplate is NewPromptTemplate that panics on error, for
// package-level template constants.
func MustPromptTemplate(name, text string) *PromptTemplate {
	t, err := NewPromptTemplate(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template with the provided data.
func (t *PromptTemplate) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", t.name, err)
	}
	return buf.String(), nil
}
