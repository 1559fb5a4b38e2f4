package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agent-bridge/internal/application/port/input"
	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/application/service"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/prompts"
)

var _ input.AgentRunner = (*Agent)(nil)

const (
	defaultMaxSteps          = 25
	defaultMaxFailures       = 3
	defaultMaxActionsPerStep = 4
	maxRememberedSteps       = 10
	maxResultLen             = 2000
)

type Config struct {
	Task              string
	UseVision         bool
	MaxSteps          int
	MaxFailures       int
	MaxActionsPerStep int
	SystemPrompt      string
}

func DefaultConfig(task string) Config {
	return Config{
		Task:              task,
		UseVision:         true,
		MaxSteps:          defaultMaxSteps,
		MaxFailures:       defaultMaxFailures,
		MaxActionsPerStep: defaultMaxActionsPerStep,
		SystemPrompt:      prompts.DefaultSystemPrompt,
	}
}

// Agent drives the browser with an LLM: observe the page, ask for the next
// actions, run them, repeat until done or out of steps.
type Agent struct {
	cfg          Config
	llm          output.LLMPort
	browser      output.BrowserPort
	tools        output.ToolRegistry
	logger       output.LoggerPort
	systemPrompt string
}

func New(
	cfg Config,
	llm output.LLMPort,
	browser output.BrowserPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
) (*Agent, error) {
	if strings.TrimSpace(cfg.Task) == "" {
		return nil, fmt.Errorf("agent task is empty")
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.MaxActionsPerStep <= 0 {
		cfg.MaxActionsPerStep = defaultMaxActionsPerStep
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = prompts.DefaultSystemPrompt
	}

	systemPrompt, err := prompts.GenerateSystemPrompt(cfg.SystemPrompt, tools, cfg.MaxActionsPerStep)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	return &Agent{
		cfg:          cfg,
		llm:          llm,
		browser:      browser,
		tools:        tools,
		logger:       logger,
		systemPrompt: systemPrompt,
	}, nil
}

// Run executes the loop. Reaching MaxFailures consecutive failed steps or
// MaxSteps ends the run without an error; the history then has no final
// result. Only context cancellation is returned as an error. The returned
// history is never nil.
func (a *Agent) Run(ctx context.Context) (*entity.AgentHistory, error) {
	history := &entity.AgentHistory{}
	failures := 0

	for step := 1; step <= a.cfg.MaxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}

		a.logger.Debug("Starting step", "step", step)

		item, err := a.step(ctx, history)
		history.Add(item)

		if err != nil || item.Error() != "" {
			failures++
			a.logger.Warn("Step failed", "step", step, "failures", failures, "error", errorText(err, item))
			if failures >= a.cfg.MaxFailures {
				a.logger.Warn("Stopping after consecutive failures", "failures", failures, "steps", step)
				return history, nil
			}
		} else {
			failures = 0
		}

		if history.IsDone() {
			a.logger.Info("Task done", "steps", step)
			return history, nil
		}
	}

	a.logger.Warn("Step limit reached without done", "max_steps", a.cfg.MaxSteps)
	return history, nil
}

func errorText(err error, item entity.HistoryItem) string {
	if err != nil {
		return err.Error()
	}
	return item.Error()
}

// step returns the history item even when it fails so the failure shows up
// in the step stream.
func (a *Agent) step(ctx context.Context, history *entity.AgentHistory) (entity.HistoryItem, error) {
	state, err := a.browser.State(ctx, a.cfg.UseVision)
	if err != nil {
		err = fmt.Errorf("read browser state: %w", err)
		return entity.HistoryItem{Results: []entity.ActionResult{{Error: err.Error()}}}, err
	}
	item := entity.HistoryItem{State: *state}

	resp, err := a.llm.Chat(ctx, output.ChatRequest{
		Messages:    a.buildMessages(history, state),
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		err = fmt.Errorf("llm request failed: %w", err)
		item.Results = []entity.ActionResult{{Error: err.Error()}}
		return item, err
	}

	out, err := ParseAgentOutput(resp.Message.Content)
	if err != nil {
		a.logger.Debug("Unparseable model reply", "reply", resp.Message.Content)
		err = fmt.Errorf("parse model output: %w", err)
		item.Results = []entity.ActionResult{{Error: err.Error()}}
		return item, err
	}
	if len(out.Actions) > a.cfg.MaxActionsPerStep {
		a.logger.Debug("Dropping extra actions", "requested", len(out.Actions), "max", a.cfg.MaxActionsPerStep)
		out.Actions = out.Actions[:a.cfg.MaxActionsPerStep]
	}
	item.ModelOutput = out

	a.logger.Info("Model output",
		"evaluation", out.EvaluationPreviousGoal,
		"next_goal", out.NextGoal,
		"actions", item.Action(),
	)

	item.Results = a.executeActions(ctx, state, out.Actions)
	return item, nil
}

func (a *Agent) executeActions(ctx context.Context, state *entity.PageState, actions []entity.ActionCall) []entity.ActionResult {
	results := make([]entity.ActionResult, 0, len(actions))
	startURL := state.URL

	for i, action := range actions {
		result := a.executeAction(ctx, state, action)
		results = append(results, result)

		if result.Error != "" || result.IsDone {
			break
		}
		// Element indexes are stale once the page has changed.
		if i < len(actions)-1 && a.pageChanged(action, startURL) {
			a.logger.Debug("Page changed, skipping remaining actions", "remaining", len(actions)-i-1)
			break
		}
	}
	return results
}

func (a *Agent) pageChanged(action entity.ActionCall, startURL string) bool {
	switch entity.ToolName(action.Name) {
	case entity.ToolGoToURL, entity.ToolGoBack:
		return true
	}
	return a.browser.CurrentURL() != startURL
}

func (a *Agent) executeAction(ctx context.Context, state *entity.PageState, action entity.ActionCall) entity.ActionResult {
	tool, ok := a.tools.Get(entity.ToolName(action.Name))
	if !ok {
		a.logger.Warn("Unknown action", "name", action.Name)
		return entity.ActionResult{Error: fmt.Sprintf("unknown action '%s'", action.Name)}
	}

	element := interactedElement(state, action.Params)

	a.logger.Info("Executing action", "name", action.Name, "params", string(action.Params))

	result, err := tool.Execute(ctx, string(action.Params))
	if err != nil {
		a.logger.Error("Action failed", "name", action.Name, "error", err)
		return entity.ActionResult{Error: err.Error(), InteractedElement: element}
	}
	if result == nil {
		result = &entity.ActionResult{}
	}
	if result.InteractedElement == nil {
		result.InteractedElement = element
	}
	return *result
}

func interactedElement(state *entity.PageState, params json.RawMessage) *entity.InteractiveElement {
	if len(params) == 0 {
		return nil
	}
	var p struct {
		Index *int `json:"index"`
	}
	if err := json.Unmarshal(params, &p); err != nil || p.Index == nil {
		return nil
	}
	el, ok := state.Element(*p.Index)
	if !ok {
		return nil
	}
	return &el
}

func (a *Agent) buildMessages(history *entity.AgentHistory, state *entity.PageState) []entity.Message {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: a.systemPrompt},
		{Role: entity.RoleUser, Content: "Task: " + a.cfg.Task},
	}

	if previous := summarizeHistory(history); previous != "" {
		messages = append(messages, entity.Message{Role: entity.RoleUser, Content: previous})
	}

	current := entity.Message{Role: entity.RoleUser, Content: describeState(state)}
	if a.cfg.UseVision && state.Screenshot != nil {
		current.Images = []entity.Screenshot{*state.Screenshot}
	}
	return append(messages, current)
}

func summarizeHistory(history *entity.AgentHistory) string {
	if history.Len() == 0 {
		return ""
	}

	start := 0
	if history.Len() > maxRememberedSteps {
		start = history.Len() - maxRememberedSteps
	}

	var b strings.Builder
	b.WriteString("Previous steps:\n")
	for i := start; i < history.Len(); i++ {
		item := history.Items[i]
		fmt.Fprintf(&b, "Step %d:", i+1)
		if out := item.ModelOutput; out != nil {
			if out.NextGoal != "" {
				fmt.Fprintf(&b, " goal: %s;", out.NextGoal)
			}
			if out.Memory != "" {
				fmt.Fprintf(&b, " memory: %s;", out.Memory)
			}
		}
		if action := item.Action(); action != "" {
			fmt.Fprintf(&b, " actions: %s;", action)
		}
		b.WriteString("\n")
		for _, r := range item.Results {
			switch {
			case r.Error != "":
				fmt.Fprintf(&b, "  error: %s\n", truncate(r.Error))
			case r.ExtractedContent != "":
				fmt.Fprintf(&b, "  result: %s\n", truncate(r.ExtractedContent))
			}
		}
	}
	return b.String()
}

func describeState(state *entity.PageState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current URL: %s\n", state.URL)
	fmt.Fprintf(&b, "Page title: %s\n", state.Title)

	if len(state.Elements) == 0 {
		b.WriteString("Interactive elements: none\n")
		return b.String()
	}

	b.WriteString("Interactive elements:\n")
	for _, el := range state.Elements {
		fmt.Fprintf(&b, "[%d]<%s", el.Index, el.Tag)
		if el.Type != "" {
			fmt.Fprintf(&b, " type=%s", el.Type)
		}
		b.WriteString("> ")
		b.WriteString(el.Label())
		if el.Href != "" {
			fmt.Fprintf(&b, " (%s)", el.Href)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string) string {
	return service.Truncate(s, maxResultLen, "... (truncated)")
}
