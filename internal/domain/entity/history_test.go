package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionCall_String(t *testing.T) {
	tests := []struct {
		call ActionCall
		want string
	}{
		{ActionCall{Name: "go_back"}, "go_back"},
		{ActionCall{Name: "go_back", Params: json.RawMessage(`null`)}, "go_back"},
		{ActionCall{Name: "go_back", Params: json.RawMessage(`{}`)}, "go_back"},
		{ActionCall{Name: "click_element", Params: json.RawMessage(`{"index":3}`)}, `click_element{"index":3}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.call.String())
	}
}

func TestHistoryItem_Accessors(t *testing.T) {
	button := &InteractiveElement{Index: 2, Tag: "button", Text: "Save"}
	item := HistoryItem{
		ModelOutput: &AgentOutput{Actions: []ActionCall{
			{Name: "scroll", Params: json.RawMessage(`{"direction":"down"}`)},
			{Name: "click_element", Params: json.RawMessage(`{"index":2}`)},
		}},
		Results: []ActionResult{
			{ExtractedContent: "Scrolled down"},
			{Error: "click intercepted", InteractedElement: button},
		},
	}

	assert.Equal(t, `scroll{"direction":"down"}; click_element{"index":2}`, item.Action())
	assert.Equal(t, "click intercepted", item.Error())
	assert.Same(t, button, item.InteractedElement())

	empty := HistoryItem{}
	assert.Empty(t, empty.Action())
	assert.Empty(t, empty.Error())
	assert.Nil(t, empty.InteractedElement())
}

func TestAgentHistory_FinalResult(t *testing.T) {
	h := &AgentHistory{}
	assert.False(t, h.IsDone())
	assert.Empty(t, h.FinalResult())

	h.Add(HistoryItem{Results: []ActionResult{{ExtractedContent: "Navigated"}}})
	assert.False(t, h.IsDone())
	assert.Empty(t, h.FinalResult())

	h.Add(HistoryItem{Results: []ActionResult{{IsDone: true, Success: false, ExtractedContent: "Button missing"}}})
	assert.True(t, h.IsDone())
	assert.Equal(t, "Button missing", h.FinalResult())
	assert.Equal(t, 2, h.Len())
}

func TestInteractiveElement_Label(t *testing.T) {
	assert.Equal(t, "Go", InteractiveElement{Tag: "button", Text: "Go", AriaLabel: "go"}.Label())
	assert.Equal(t, "Search", InteractiveElement{Tag: "button", AriaLabel: "Search"}.Label())
	assert.Equal(t, "Email", InteractiveElement{Tag: "input", Placeholder: "Email"}.Label())
	assert.Equal(t, "select", InteractiveElement{Tag: "select"}.Label())
}

func TestScreenshot_NilSafe(t *testing.T) {
	var s *Screenshot
	assert.Empty(t, s.Base64())
	assert.Equal(t, "image/jpeg", s.MIMEType())
	assert.Equal(t, "aGk=", (&Screenshot{Data: []byte("hi"), Format: "png"}).Base64())
	assert.Equal(t, "image/png", (&Screenshot{Format: "png"}).MIMEType())
}
