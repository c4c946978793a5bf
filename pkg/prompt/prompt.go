// Package prompt provides parameterized prompt templates with named
// placeholders.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// Template render failures. Callers match with errors.Is.
var (
	// ErrMissingVariable is returned when a declared variable has no value.
	ErrMissingVariable = errors.New("prompt: missing variable value")

	// ErrExtraVariable is returned when the value mapping contains a key that
	// was never declared. Rejection is deliberate: a stray key usually means
	// the caller wired the wrong template.
	ErrExtraVariable = errors.New("prompt: undeclared variable in values")

	// ErrUndeclaredPlaceholder is returned at construction when the template
	// text references a placeholder outside the declared variable set.
	ErrUndeclaredPlaceholder = errors.New("prompt: placeholder not declared as a variable")
)

// placeholderRe matches {name} placeholders in template text.
var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Template is parameterized text with named substitution points. A Template
// is immutable after construction and safe for concurrent use.
type Template struct {
	text string
	vars []string
}

// New creates a Template from text and its declared variable names.
// Every {name} placeholder in text must appear in vars.
func New(text string, vars ...string) (*Template, error) {
	declared := slices.Clone(vars)

	for _, match := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !slices.Contains(declared, match[1]) {
			return nil, fmt.Errorf("%w: {%s}", ErrUndeclaredPlaceholder, match[1])
		}
	}

	return &Template{text: text, vars: declared}, nil
}

// MustNew is like New but panics on error. Intended for templates defined as
// package-level literals.
func MustNew(text string, vars ...string) *Template {
	t, err := New(text, vars...)
	if err != nil {
		panic(err)
	}

	return t
}

// Variables returns a copy of the declared variable names, in declaration
// order.
func (t *Template) Variables() []string {
	return slices.Clone(t.vars)
}

// Text returns the raw template text.
func (t *Template) Text() string { return t.text }

// Render substitutes values into the template and returns the result.
// The value mapping must contain exactly the declared variable set: a missing
// key fails with ErrMissingVariable, an extra key with ErrExtraVariable.
// Substitution is a single textual pass — a substituted value is inserted
// verbatim even when it contains placeholder-like text.
func (t *Template) Render(values map[string]string) (string, error) {
	for _, v := range t.vars {
		if _, ok := values[v]; !ok {
			return "", fmt.Errorf("%w: %q", ErrMissingVariable, v)
		}
	}

	for k := range values {
		if !slices.Contains(t.vars, k) {
			return "", fmt.Errorf("%w: %q", ErrExtraVariable, k)
		}
	}

	return placeholderRe.ReplaceAllStringFunc(t.text, func(m string) string {
		name := m[1 : len(m)-1]
		return values[name]
	}), nil
}
