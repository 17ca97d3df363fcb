// Package narrative renders a deal analysis into the text prompt sent to the
// credit memo writer.
package narrative

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/format"
)

//go:embed prompt.tmpl
var promptTemplate string

// SystemPrompt frames the writer's role.
const SystemPrompt = "You are a commercial credit analyst writing the cash flow section of an SBA 7(a) credit memorandum. " +
	"Use only the figures provided. Do not invent numbers."

// Prompt is a rendered system and user prompt pair.
type Prompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

var funcs = template.FuncMap{
	"currency": format.Currency,
	"ratio":    format.Ratio,
	"coverage": format.Coverage,
	"percent":  format.Percent,
	"days":     format.Days,
}

var tmpl = template.Must(template.New("narrative").Funcs(funcs).Parse(promptTemplate))

// Build renders the prompt for an analysis.
func Build(a dscr.Analysis) (Prompt, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, a); err != nil {
		return Prompt{}, fmt.Errorf("rendering narrative prompt: %w", err)
	}
	return Prompt{System: SystemPrompt, User: buf.String()}, nil
}
