package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgentOutput_Flat(t *testing.T) {
	reply := `{
  "thinking": "the login form is visible",
  "evaluation_previous_goal": "Success",
  "memory": "opened the page",
  "next_goal": "fill the email",
  "action": [
    {"name": "input_text", "params": {"index": 2, "text": "a@b.c"}},
    {"name": "click_element", "params": {"index": 4}}
  ]
}`

	out, err := ParseAgentOutput(reply)
	require.NoError(t, err)

	assert.Equal(t, "the login form is visible", out.Thinking)
	assert.Equal(t, "Success", out.EvaluationPreviousGoal)
	assert.Equal(t, "opened the page", out.Memory)
	assert.Equal(t, "fill the email", out.NextGoal)
	require.Len(t, out.Actions, 2)
	assert.Equal(t, "input_text", out.Actions[0].Name)
	assert.JSONEq(t, `{"index": 2, "text": "a@b.c"}`, string(out.Actions[0].Params))
	assert.Equal(t, "click_element", out.Actions[1].Name)
}

func TestParseAgentOutput_ShortFormAndCurrentState(t *testing.T) {
	reply := "Sure, here you go:\n```json\n" + `{
  "current_state": {"thinking": "nested", "next_goal": "scroll"},
  "action": [{"scroll": {"direction": "down"}}, {"go_back": {}}]
}` + "\n```"

	out, err := ParseAgentOutput(reply)
	require.NoError(t, err)

	assert.Equal(t, "nested", out.Thinking)
	assert.Equal(t, "scroll", out.NextGoal)
	require.Len(t, out.Actions, 2)
	assert.Equal(t, "scroll", out.Actions[0].Name)
	assert.JSONEq(t, `{"direction": "down"}`, string(out.Actions[0].Params))
	assert.Equal(t, "go_back", out.Actions[1].Name)
}

func TestParseAgentOutput_SingleActionObject(t *testing.T) {
	out, err := ParseAgentOutput(`{"thinking": "t", "action": {"name": "done", "params": {"text": "ok"}}}`)
	require.NoError(t, err)

	require.Len(t, out.Actions, 1)
	assert.Equal(t, "done", out.Actions[0].Name)
}

func TestParseAgentOutput_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json", "I will click the button"},
		{"broken json", `{"thinking": "x", "action": [}`},
		{"no action", `{"thinking": "x"}`},
		{"empty action list", `{"thinking": "x", "action": []}`},
		{"ambiguous short form", `{"action": [{"click_element": {"index": 1}, "scroll": {}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAgentOutput(tt.reply)
			assert.Error(t, err)
		})
	}
}
