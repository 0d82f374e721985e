// Package template is the optional variable-substitution stage.
//
// It consumes a cell's raw text and a variable mapping, and is deliberately
// decoupled from extraction, validation, and execution: nothing in the
// pipeline calls it. The CLI render command is its only consumer.
package template

import (
	"fmt"
	"strings"
	"text/template"
)

// Expand substitutes {{.name}} references in raw with values from vars.
// An unknown variable is an error rather than silently rendering empty.
func Expand(raw string, vars map[string]any) (string, error) {
	tmpl, err := template.New("cell").Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse cell template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("expand cell template: %w", err)
	}
	return b.String(), nil
}
