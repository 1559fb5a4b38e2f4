// Package bridge runs one agent session for a consuming process and reports
// its progress as events.
package bridge

import (
	"context"
	"errors"
	"fmt"

	"agent-bridge/internal/application/port/input"
	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/usecase/evaluator"
)

const (
	Usage = "Usage: bridge <provider> <model> <url> <task>"

	// MinArgs is the number of positional arguments a run needs.
	MinArgs = 4

	taskTemplate = "Go to %s. %s. At each step, describe what you are doing. Verify if the test goal is met."
)

type (
	LLMFactory     func(provider entity.Provider, model string) (output.LLMPort, error)
	BrowserFactory func(ctx context.Context) (output.BrowserPort, error)
	AgentFactory   func(task string, llm output.LLMPort, browser output.BrowserPort) (input.AgentRunner, error)
)

// Verifier judges a finished run. *evaluator.Evaluator satisfies it.
type Verifier interface {
	Evaluate(ctx context.Context, criteria entity.EvaluationCriteria) (*entity.EvaluationResult, error)
}

type Factories struct {
	NewLLM      LLMFactory
	NewBrowser  BrowserFactory
	NewAgent    AgentFactory
	NewVerifier func(llm output.LLMPort) Verifier
}

type Bridge struct {
	factories Factories
	events    output.EventSink
	logger    output.LoggerPort
	verify    bool
}

func New(factories Factories, events output.EventSink, logger output.LoggerPort, verify bool) *Bridge {
	return &Bridge{
		factories: factories,
		events:    events,
		logger:    logger,
		verify:    verify && factories.NewVerifier != nil,
	}
}

// Task builds the instruction handed to the agent.
func Task(url, goal string) string {
	return fmt.Sprintf(taskTemplate, url, goal)
}

// Run executes one session and returns the process exit code. args are the
// positional arguments without the program name; extra ones are ignored.
func (b *Bridge) Run(ctx context.Context, args []string) int {
	if len(args) < MinArgs {
		b.logger.Warn("Not enough arguments", "got", len(args))
		b.emit(entity.EventError, Usage)
		return 0
	}
	provider, model, url, goal := entity.Provider(args[0]), args[1], args[2], args[3]

	b.logger.Info("Bridge started", "provider", provider, "model", model, "url", url)

	llm, err := b.factories.NewLLM(provider, model)
	switch {
	case errors.Is(err, entity.ErrMissingAPIKey):
		b.emit(entity.EventError, err.Error())
		return 0
	case errors.Is(err, entity.ErrUnsupportedProvider):
		b.emit(entity.EventError, fmt.Sprintf("Unsupported provider: %s", provider))
		return 0
	case err != nil:
		b.logger.Error("LLM client construction failed", "error", err)
		b.emit(entity.EventError, fmt.Sprintf("Failed to create LLM client: %v", err))
		return 1
	}

	browser, err := b.factories.NewBrowser(ctx)
	if err != nil {
		b.logger.Error("Browser launch failed", "error", err)
		b.emit(entity.EventError, fmt.Sprintf("Failed to launch browser: %v", err))
		return 1
	}
	defer func() {
		if err := browser.Close(); err != nil {
			b.logger.Warn("Browser close failed", "error", err)
		}
	}()

	task := Task(url, goal)
	agent, err := b.factories.NewAgent(task, llm, browser)
	if err != nil {
		b.logger.Error("Agent construction failed", "error", err)
		b.emit(entity.EventError, fmt.Sprintf("Agent execution failed: %v", err))
		return 1
	}

	b.emit(entity.EventInfo, fmt.Sprintf("Agent starting with %s/%s", provider, model))

	history, err := agent.Run(ctx)
	if err != nil {
		b.logger.Error("Agent run failed", "error", err)
		b.emit(entity.EventError, fmt.Sprintf("Agent execution failed: %v", err))
		return 1
	}
	if history == nil {
		history = &entity.AgentHistory{}
	}

	for i, item := range history.Items {
		b.emit(entity.EventStep, entity.NewStepSummary(i+1, item))
	}

	completed := entity.CompletedSummary{Summary: history.FinalResult()}
	if b.verify {
		completed.Verification = b.verifyRun(ctx, llm, task, history)
	}
	b.emit(entity.EventCompleted, completed)

	b.logger.Info("Bridge finished", "steps", history.Len(), "done", history.IsDone())
	return 0
}

// verifyRun returns nil when the verdict cannot be obtained; the run result stands on its own.
func (b *Bridge) verifyRun(ctx context.Context, llm output.LLMPort, task string, history *entity.AgentHistory) *entity.EvaluationResult {
	verdict, err := b.factories.NewVerifier(llm).Evaluate(ctx, evaluator.CriteriaFromHistory(task, history))
	if err != nil {
		b.logger.Warn("Verification failed", "error", err)
		return nil
	}
	return verdict
}

func (b *Bridge) emit(eventType entity.EventType, data any) {
	if err := b.events.Emit(eventType, data); err != nil {
		b.logger.Error("Event emit failed", "type", eventType, "error", err)
	}
}
