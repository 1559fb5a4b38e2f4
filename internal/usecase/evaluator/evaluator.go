package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/application/service"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/prompts"
)

const unparseableVerdict = "evaluator response was not valid JSON"

// Evaluator asks the LLM whether a finished run actually met its test goal.
type Evaluator struct {
	llm    output.LLMPort
	logger output.LoggerPort
}

func New(llm output.LLMPort, logger output.LoggerPort) *Evaluator {
	return &Evaluator{
		llm:    llm,
		logger: logger,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, criteria entity.EvaluationCriteria) (*entity.EvaluationResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: prompts.EvaluatorPrompt},
		{Role: entity.RoleUser, Content: buildUserMessage(criteria)},
	}

	resp, err := e.llm.Chat(ctx, output.ChatRequest{
		Messages:    messages,
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluation llm request failed: %w", err)
	}

	result, err := parseEvaluationResponse(resp.Message.Content)
	if err != nil {
		e.logger.Warn("Failed to parse evaluation response", "error", err)
		return &entity.EvaluationResult{
			Success:    false,
			Confidence: 0,
			Issues:     []string{unparseableVerdict},
		}, nil
	}

	e.logger.Info("Evaluation completed",
		"success", result.Success,
		"confidence", result.Confidence,
		"issues_count", len(result.Issues),
	)

	return result, nil
}

func buildUserMessage(criteria entity.EvaluationCriteria) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\n", criteria.TaskDescription)

	result := criteria.ActualResult
	if result == "" {
		result = "(the agent stopped without a final result)"
	}
	fmt.Fprintf(&b, "Final result:\n%s\n\n", result)
	fmt.Fprintf(&b, "Steps taken: %d\n", criteria.Steps)

	if len(criteria.Errors) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range criteria.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}

func parseEvaluationResponse(response string) (*entity.EvaluationResult, error) {
	payload, err := service.ExtractJSONObject(response)
	if err != nil {
		return nil, err
	}

	var result entity.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if result.Issues == nil {
		result.Issues = []string{}
	}

	return &result, nil
}

// CriteriaFromHistory collects what the evaluator needs from a finished run.
func CriteriaFromHistory(task string, history *entity.AgentHistory) entity.EvaluationCriteria {
	criteria := entity.EvaluationCriteria{
		TaskDescription: task,
		ActualResult:    history.FinalResult(),
		Steps:           history.Len(),
	}
	for _, item := range history.Items {
		if msg := item.Error(); msg != "" {
			criteria.Errors = append(criteria.Errors, msg)
		}
	}
	return criteria
}
