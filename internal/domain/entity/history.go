package entity

import (
	"encoding/json"
	"strings"
)

// ActionCall is one action the model asked for, e.g. {"name":"click_element","params":{"index":3}}.
type ActionCall struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (a ActionCall) String() string {
	params := strings.TrimSpace(string(a.Params))
	if params == "" || params == "null" || params == "{}" {
		return a.Name
	}
	return a.Name + params
}

type AgentOutput struct {
	Thinking               string       `json:"thinking"`
	EvaluationPreviousGoal string       `json:"evaluation_previous_goal"`
	Memory                 string       `json:"memory"`
	NextGoal               string       `json:"next_goal"`
	Actions                []ActionCall `json:"action"`
}

type ActionResult struct {
	IsDone            bool
	Success           bool
	ExtractedContent  string
	Error             string
	InteractedElement *InteractiveElement
}

type HistoryItem struct {
	State       PageState
	ModelOutput *AgentOutput
	Results     []ActionResult
}

// Error joins the action errors recorded for the step.
func (h HistoryItem) Error() string {
	var errs []string
	for _, r := range h.Results {
		if r.Error != "" {
			errs = append(errs, r.Error)
		}
	}
	return strings.Join(errs, "; ")
}

func (h HistoryItem) InteractedElement() *InteractiveElement {
	for _, r := range h.Results {
		if r.InteractedElement != nil {
			return r.InteractedElement
		}
	}
	return nil
}

func (h HistoryItem) Action() string {
	if h.ModelOutput == nil || len(h.ModelOutput.Actions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(h.ModelOutput.Actions))
	for _, a := range h.ModelOutput.Actions {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, "; ")
}

type AgentHistory struct {
	Items []HistoryItem
}

func (h *AgentHistory) Add(item HistoryItem) {
	h.Items = append(h.Items, item)
}

func (h *AgentHistory) Len() int {
	return len(h.Items)
}

func (h *AgentHistory) IsDone() bool {
	last, ok := h.lastResult()
	return ok && last.IsDone
}

// FinalResult is the content of the closing done action, or "" when the run never finished.
func (h *AgentHistory) FinalResult() string {
	last, ok := h.lastResult()
	if !ok || !last.IsDone {
		return ""
	}
	return last.ExtractedContent
}

func (h *AgentHistory) lastResult() (ActionResult, bool) {
	if len(h.Items) == 0 {
		return ActionResult{}, false
	}
	results := h.Items[len(h.Items)-1].Results
	if len(results) == 0 {
		return ActionResult{}, false
	}
	return results[len(results)-1], true
}
