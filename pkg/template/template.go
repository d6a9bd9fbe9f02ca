// Package template renders action configuration values against the execution
// scope, so automations can reference event data in messages.
package template

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/emeraldhq/pulse/pkg/models"
)

// RenderWithScope renders input with the execution scope exposed as template
// data: .event, .data, .automation and .env.
func RenderWithScope(input string, scope models.ExecutionScope) (string, error) {
	data := map[string]any{
		"data": scope.Event.Data,
		"event": map[string]any{
			"type":            string(scope.Event.Type),
			"organization_id": scope.Event.OrganizationID,
			"fired_at":        scope.Event.FiredAt.UTC().Format(time.RFC3339),
		},
		"env": envVars(),
	}

	if scope.Automation != nil {
		data["automation"] = map[string]any{
			"id":   scope.Automation.ID,
			"name": scope.Automation.Name,
		}
	}

	return Render(input, data)
}

// Render parses and executes templateStr with the given data.
func Render(templateStr string, data any) (string, error) {
	if !strings.Contains(templateStr, "{{") {
		return templateStr, nil
	}

	tmpl, err := template.
		New("render").
		Option("missingkey=zero").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}

				num := make([]byte, 1)
				if _, err := rand.Read(num); err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	// text/template renders missing map keys as "<no value>".
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}

func envVars() map[string]string {
	vars := make(map[string]string)

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			vars[parts[0]] = parts[1]
		}
	}

	return vars
}
