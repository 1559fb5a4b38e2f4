package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/application/service"
	"agent-bridge/internal/domain/entity"
)

const maxExtractLen = 20000

func decodeArgs(args string, v any) error {
	args = strings.TrimSpace(args)
	if args == "" || args == "null" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func noParams() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

func indexParam() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Index of the element in the interactive elements list",
	}
}

type NavigateTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewNavigateTool(browser output.BrowserPort, logger output.LoggerPort) *NavigateTool {
	return &NavigateTool{browser: browser, logger: logger}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolGoToURL }
func (t *NavigateTool) Description() string   { return "Navigate the current tab to a URL" }
func (t *NavigateTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute URL to open",
			},
		},
		"required": []string{"url"},
	}
}

func (t *NavigateTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if err := t.browser.Navigate(ctx, input.URL); err != nil {
		return nil, err
	}
	t.logger.Debug("Navigated", "url", input.URL)
	return &entity.ActionResult{
		ExtractedContent: fmt.Sprintf("Navigated to %s", t.browser.CurrentURL()),
	}, nil
}

type GoBackTool struct {
	browser output.BrowserPort
}

func NewGoBackTool(browser output.BrowserPort) *GoBackTool {
	return &GoBackTool{browser: browser}
}

func (t *GoBackTool) Name() entity.ToolName              { return entity.ToolGoBack }
func (t *GoBackTool) Description() string                { return "Go back to the previous page" }
func (t *GoBackTool) Parameters() map[string]interface{} { return noParams() }

func (t *GoBackTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	if err := t.browser.GoBack(ctx); err != nil {
		return nil, err
	}
	return &entity.ActionResult{ExtractedContent: "Navigated back"}, nil
}

type ClickTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewClickTool(browser output.BrowserPort, logger output.LoggerPort) *ClickTool {
	return &ClickTool{browser: browser, logger: logger}
}

func (t *ClickTool) Name() entity.ToolName { return entity.ToolClickElement }
func (t *ClickTool) Description() string   { return "Click an interactive element by index" }
func (t *ClickTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"index": indexParam(),
		},
		"required": []string{"index"},
	}
}

func (t *ClickTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	var input struct {
		Index *int `json:"index"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if err := t.browser.ClickElement(ctx, *input.Index); err != nil {
		return nil, err
	}
	t.logger.Debug("Clicked element", "index", *input.Index)
	return &entity.ActionResult{
		ExtractedContent: fmt.Sprintf("Clicked element %d", *input.Index),
	}, nil
}

type InputTextTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewInputTextTool(browser output.BrowserPort, logger output.LoggerPort) *InputTextTool {
	return &InputTextTool{browser: browser, logger: logger}
}

func (t *InputTextTool) Name() entity.ToolName { return entity.ToolInputText }
func (t *InputTextTool) Description() string {
	return "Replace the value of an input element with text"
}
func (t *InputTextTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"index": indexParam(),
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to type",
			},
		},
		"required": []string{"index", "text"},
	}
}

func (t *InputTextTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	var input struct {
		Index *int   `json:"index"`
		Text  string `json:"text"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if err := t.browser.InputText(ctx, *input.Index, input.Text); err != nil {
		return nil, err
	}
	return &entity.ActionResult{
		ExtractedContent: fmt.Sprintf("Typed %q into element %d", input.Text, *input.Index),
	}, nil
}

type SendKeysTool struct {
	browser output.BrowserPort
}

func NewSendKeysTool(browser output.BrowserPort) *SendKeysTool {
	return &SendKeysTool{browser: browser}
}

func (t *SendKeysTool) Name() entity.ToolName { return entity.ToolSendKeys }
func (t *SendKeysTool) Description() string {
	return "Press a special key on the focused element: Enter, Tab, Escape, Backspace, ArrowUp, ArrowDown, PageUp, PageDown"
}
func (t *SendKeysTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keys": map[string]interface{}{
				"type":        "string",
				"description": "Key name",
			},
		},
		"required": []string{"keys"},
	}
}

func (t *SendKeysTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	var input struct {
		Keys string `json:"keys"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if err := t.browser.PressKey(ctx, input.Keys); err != nil {
		return nil, err
	}
	return &entity.ActionResult{ExtractedContent: "Pressed " + input.Keys}, nil
}

type ScrollTool struct {
	browser output.BrowserPort
}

func NewScrollTool(browser output.BrowserPort) *ScrollTool {
	return &ScrollTool{browser: browser}
}

func (t *ScrollTool) Name() entity.ToolName { return entity.ToolScroll }
func (t *ScrollTool) Description() string   { return "Scroll the page" }
func (t *ScrollTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"up", "down", "top", "bottom"},
				"description": "Scroll direction",
			},
		},
		"required": []string{"direction"},
	}
}

func (t *ScrollTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	var input struct {
		Direction string `json:"direction"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	if input.Direction == "" {
		input.Direction = "down"
	}
	if err := t.browser.Scroll(ctx, input.Direction); err != nil {
		return nil, err
	}
	return &entity.ActionResult{ExtractedContent: "Scrolled " + input.Direction}, nil
}

type ExtractContentTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewExtractContentTool(browser output.BrowserPort, logger output.LoggerPort) *ExtractContentTool {
	return &ExtractContentTool{browser: browser, logger: logger}
}

func (t *ExtractContentTool) Name() entity.ToolName { return entity.ToolExtractContent }
func (t *ExtractContentTool) Description() string {
	return "Read the visible text of the current page"
}
func (t *ExtractContentTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"goal": map[string]interface{}{
				"type":        "string",
				"description": "What you are looking for",
			},
		},
		"required": []string{},
	}
}

func (t *ExtractContentTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	var input struct {
		Goal string `json:"goal"`
	}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	text, err := t.browser.PageText(ctx)
	if err != nil {
		return nil, err
	}
	text = service.Truncate(text, maxExtractLen, "\n... (truncated)")
	t.logger.Debug("Extracted page text", "goal", input.Goal, "length", len(text))
	return &entity.ActionResult{ExtractedContent: text}, nil
}

type DoneTool struct{}

func NewDoneTool() *DoneTool {
	return &DoneTool{}
}

func (t *DoneTool) Name() entity.ToolName { return entity.ToolDone }
func (t *DoneTool) Description() string {
	return "Finish the task and report the final result. success=false when the goal could not be met"
}
func (t *DoneTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Final result for the user",
			},
			"success": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether the task goal was met",
			},
		},
		"required": []string{"text"},
	}
}

func (t *DoneTool) Execute(ctx context.Context, args string) (*entity.ActionResult, error) {
	input := struct {
		Text    string `json:"text"`
		Success *bool  `json:"success"`
	}{}
	if err := decodeArgs(args, &input); err != nil {
		return nil, err
	}
	success := true
	if input.Success != nil {
		success = *input.Success
	}
	return &entity.ActionResult{
		IsDone:           true,
		Success:          success,
		ExtractedContent: input.Text,
	}, nil
}

// RegisterBrowserTools adds the full browser action set to the registry.
func RegisterBrowserTools(registry output.ToolRegistry, browser output.BrowserPort, logger output.LoggerPort) {
	registry.Register(NewNavigateTool(browser, logger))
	registry.Register(NewGoBackTool(browser))
	registry.Register(NewClickTool(browser, logger))
	registry.Register(NewInputTextTool(browser, logger))
	registry.Register(NewSendKeysTool(browser))
	registry.Register(NewScrollTool(browser))
	registry.Register(NewExtractContentTool(browser, logger))
	registry.Register(NewDoneTool())
}
