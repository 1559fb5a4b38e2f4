package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"agent-bridge/internal/application/service"
	"agent-bridge/internal/domain/entity"
)

// rawOutput accepts both the flat reply format and the nested
// {"current_state": {...}, "action": [...]} one that many models default to.
type rawOutput struct {
	Thinking               string          `json:"thinking"`
	EvaluationPreviousGoal string          `json:"evaluation_previous_goal"`
	Memory                 string          `json:"memory"`
	NextGoal               string          `json:"next_goal"`
	CurrentState           *rawState       `json:"current_state"`
	Action                 json.RawMessage `json:"action"`
}

type rawState struct {
	Thinking               string `json:"thinking"`
	EvaluationPreviousGoal string `json:"evaluation_previous_goal"`
	Memory                 string `json:"memory"`
	NextGoal               string `json:"next_goal"`
}

// ParseAgentOutput decodes a model reply into an AgentOutput. Actions may be a
// list or a single object, and each action may be {"name":..,"params":..} or
// the short form {"click_element": {"index": 3}}.
func ParseAgentOutput(reply string) (*entity.AgentOutput, error) {
	payload, err := service.ExtractJSONObject(reply)
	if err != nil {
		return nil, err
	}

	var raw rawOutput
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("invalid agent output: %w", err)
	}

	out := &entity.AgentOutput{
		Thinking:               raw.Thinking,
		EvaluationPreviousGoal: raw.EvaluationPreviousGoal,
		Memory:                 raw.Memory,
		NextGoal:               raw.NextGoal,
	}
	if cs := raw.CurrentState; cs != nil {
		out.Thinking = firstNonEmpty(out.Thinking, cs.Thinking)
		out.EvaluationPreviousGoal = firstNonEmpty(out.EvaluationPreviousGoal, cs.EvaluationPreviousGoal)
		out.Memory = firstNonEmpty(out.Memory, cs.Memory)
		out.NextGoal = firstNonEmpty(out.NextGoal, cs.NextGoal)
	}

	actions, err := parseActions(raw.Action)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("agent output has no action")
	}
	out.Actions = actions

	return out, nil
}

func parseActions(raw json.RawMessage) ([]entity.ActionCall, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("invalid action list: %w", err)
		}
	} else {
		items = []json.RawMessage{raw}
	}

	actions := make([]entity.ActionCall, 0, len(items))
	for _, item := range items {
		call, err := parseAction(item)
		if err != nil {
			return nil, err
		}
		actions = append(actions, call)
	}
	return actions, nil
}

func parseAction(item json.RawMessage) (entity.ActionCall, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return entity.ActionCall{}, fmt.Errorf("invalid action: %w", err)
	}

	if rawName, ok := fields["name"]; ok {
		var call entity.ActionCall
		if err := json.Unmarshal(rawName, &call.Name); err != nil {
			return entity.ActionCall{}, fmt.Errorf("invalid action name: %w", err)
		}
		call.Params = fields["params"]
		return call, nil
	}

	if len(fields) != 1 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return entity.ActionCall{}, fmt.Errorf("cannot tell which action is meant by %v", keys)
	}
	for name, params := range fields {
		return entity.ActionCall{Name: name, Params: params}, nil
	}
	return entity.ActionCall{}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
