package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"agent-bridge/internal/application/port/output"
)

type ToolInfo struct {
	Name        string
	Description string
	Params      string
}

type SystemPromptData struct {
	Tools      []ToolInfo
	MaxActions int
}

// GenerateSystemPrompt renders the tool catalogue from the registry into baseTemplate.
func GenerateSystemPrompt(baseTemplate string, tools output.ToolRegistry, maxActions int) (string, error) {
	defs := tools.Definitions()
	infos := make([]ToolInfo, 0, len(defs))

	for _, def := range defs {
		params := "{}"
		if props, ok := def.Parameters["properties"]; ok {
			raw, err := json.Marshal(props)
			if err != nil {
				return "", fmt.Errorf("marshal params of %s: %w", def.Name, err)
			}
			params = string(raw)
		}
		infos = append(infos, ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			Params:      params,
		})
	}

	tmpl, err := template.New("system").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, SystemPromptData{Tools: infos, MaxActions: maxActions}); err != nil {
		return "", err
	}

	return buf.String(), nil
}
