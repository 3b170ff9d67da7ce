// Package transform expands text/template placeholders in configuration values.
package transform

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Expand processes text through template substitution with vars.
// A reference to an undefined variable is an error. Text without "{{" is
// returned unchanged.
func Expand(text string, vars map[string]string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// MergeVars merges global variables with per-item variables.
// Per-item vars override global vars.
func MergeVars(global map[string]string, perItem map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(perItem))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range perItem {
		merged[k] = v
	}
	return merged
}
