package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"agent-bridge/internal/adapter/tool"
	"agent-bridge/internal/application/port/input"
	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/application/service"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/events"
	"agent-bridge/internal/infrastructure/logger"
	"agent-bridge/internal/testutil/mocks"
	"agent-bridge/internal/usecase/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	history *entity.AgentHistory
	err     error
	runs    int
}

func (a *fakeAgent) Run(ctx context.Context) (*entity.AgentHistory, error) {
	a.runs++
	return a.history, a.err
}

type fakeVerifier struct {
	result   *entity.EvaluationResult
	err      error
	criteria entity.EvaluationCriteria
}

func (v *fakeVerifier) Evaluate(ctx context.Context, c entity.EvaluationCriteria) (*entity.EvaluationResult, error) {
	v.criteria = c
	return v.result, v.err
}

type harness struct {
	out        bytes.Buffer
	browser    *mocks.MockBrowser
	agent      *fakeAgent
	llmErr     error
	browserErr error

	llmCalls     int
	browserCalls int
	agentTask    string
	verifier     *fakeVerifier
}

func newHarness() *harness {
	return &harness{
		browser: mocks.NewMockBrowser(),
		agent:   &fakeAgent{history: &entity.AgentHistory{}},
	}
}

func (h *harness) bridge(verify bool) *Bridge {
	factories := Factories{
		NewLLM: func(provider entity.Provider, model string) (output.LLMPort, error) {
			h.llmCalls++
			if h.llmErr != nil {
				return nil, h.llmErr
			}
			return mocks.NewMockLLM(), nil
		},
		NewBrowser: func(ctx context.Context) (output.BrowserPort, error) {
			h.browserCalls++
			if h.browserErr != nil {
				return nil, h.browserErr
			}
			return h.browser, nil
		},
		NewAgent: func(task string, llm output.LLMPort, browser output.BrowserPort) (input.AgentRunner, error) {
			h.agentTask = task
			return h.agent, nil
		},
	}
	if h.verifier != nil {
		factories.NewVerifier = func(llm output.LLMPort) Verifier { return h.verifier }
	}
	return New(factories, events.NewEmitter(&h.out), logger.NewNopLogger(), verify)
}

type decodedEvent struct {
	Type entity.EventType `json:"type"`
	Data json.RawMessage  `json:"data"`
}

func (h *harness) events(t *testing.T) []decodedEvent {
	t.Helper()
	var out []decodedEvent
	for _, line := range strings.Split(strings.TrimSuffix(h.out.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		require.True(t, strings.HasPrefix(line, events.Prefix), "unexpected stdout line %q", line)
		var ev decodedEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, events.Prefix)), &ev))
		out = append(out, ev)
	}
	return out
}

func dataString(t *testing.T, ev decodedEvent) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(ev.Data, &s))
	return s
}

func TestRun_TooFewArgumentsOnlyPrintsUsage(t *testing.T) {
	for n := 0; n < 4; n++ {
		t.Run(fmt.Sprintf("%d args", n), func(t *testing.T) {
			h := newHarness()
			args := []string{"openai", "gpt-4o", "https://example.com"}[:min(n, 3)]

			code := h.bridge(false).Run(context.Background(), args)

			assert.Equal(t, 0, code)
			evs := h.events(t)
			require.Len(t, evs, 1)
			assert.Equal(t, entity.EventError, evs[0].Type)
			assert.Equal(t, Usage, dataString(t, evs[0]))
			assert.Zero(t, h.llmCalls)
			assert.Zero(t, h.browserCalls)
		})
	}
}

func TestRun_MissingAPIKey(t *testing.T) {
	h := newHarness()
	h.llmErr = entity.ErrMissingAPIKey

	code := h.bridge(false).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "check"})

	assert.Equal(t, 0, code)
	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, entity.EventError, evs[0].Type)
	assert.Contains(t, dataString(t, evs[0]), "OPENAI_API_KEY")
	assert.Zero(t, h.browserCalls)
}

func TestRun_UnsupportedProvider(t *testing.T) {
	h := newHarness()
	h.llmErr = fmt.Errorf("%w: %s", entity.ErrUnsupportedProvider, "anthropic")

	code := h.bridge(false).Run(context.Background(), []string{"anthropic", "m", "https://example.com", "check"})

	assert.Equal(t, 0, code)
	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, "Unsupported provider: anthropic", dataString(t, evs[0]))
	assert.Zero(t, h.browserCalls)
}

func TestRun_ClientConstructionFailure(t *testing.T) {
	h := newHarness()
	h.llmErr = errors.New("bad base url")

	code := h.bridge(false).Run(context.Background(), []string{"ollama", "llava", "https://example.com", "check"})

	assert.Equal(t, 1, code)
	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, "Failed to create LLM client: bad base url", dataString(t, evs[0]))
}

func TestRun_BrowserLaunchFailure(t *testing.T) {
	h := newHarness()
	h.browserErr = errors.New("chrome not found")

	code := h.bridge(false).Run(context.Background(), []string{"ollama", "llava", "https://example.com", "check"})

	assert.Equal(t, 1, code)
	evs := h.events(t)
	require.Len(t, evs, 1)
	assert.Contains(t, dataString(t, evs[0]), "chrome not found")
	assert.Zero(t, h.agent.runs)
}

func TestRun_SuccessStreamsSteps(t *testing.T) {
	h := newHarness()
	h.agent.history = &entity.AgentHistory{Items: []entity.HistoryItem{
		{
			State:       entity.PageState{Screenshot: &entity.Screenshot{Data: []byte("img")}},
			ModelOutput: &entity.AgentOutput{Thinking: "open page", Actions: []entity.ActionCall{{Name: "go_to_url", Params: json.RawMessage(`{"url":"https://example.com"}`)}}},
			Results:     []entity.ActionResult{{ExtractedContent: "Navigated"}},
		},
		{
			ModelOutput: &entity.AgentOutput{Actions: []entity.ActionCall{{Name: "click_element", Params: json.RawMessage(`{"index":1}`)}}},
			Results: []entity.ActionResult{{
				Error:             "element with index 1 not found",
				InteractedElement: &entity.InteractiveElement{Index: 1, Tag: "button", Text: "Sign in"},
			}},
		},
		{
			ModelOutput: &entity.AgentOutput{Actions: []entity.ActionCall{{Name: "done", Params: json.RawMessage(`{"text":"Login page works"}`)}}},
			Results:     []entity.ActionResult{{IsDone: true, Success: true, ExtractedContent: "Login page works"}},
		},
	}}

	code := h.bridge(false).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "Check the login page"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "Go to https://example.com. Check the login page. At each step, describe what you are doing. Verify if the test goal is met.", h.agentTask)

	evs := h.events(t)
	require.Len(t, evs, 5)
	assert.Equal(t, entity.EventInfo, evs[0].Type)
	assert.Equal(t, "Agent starting with openai/gpt-4o", dataString(t, evs[0]))

	for i := 1; i <= 3; i++ {
		require.Equal(t, entity.EventStep, evs[i].Type)
		var step entity.StepSummary
		require.NoError(t, json.Unmarshal(evs[i].Data, &step))
		assert.Equal(t, i, step.StepNumber)
	}

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(evs[1].Data, &first))
	require.NoError(t, json.Unmarshal(evs[2].Data, &second))
	assert.Equal(t, "Thinking...", first["goal"])
	assert.Equal(t, "open page", first["thinking"])
	assert.Equal(t, "success", first["result"])
	assert.Equal(t, "aW1n", first["screenshot"])
	assert.Equal(t, "Sign in", second["goal"])
	assert.Equal(t, "failed", second["result"])
	assert.Equal(t, "element with index 1 not found", second["details"])
	assert.Equal(t, "", second["thinking"])
	assert.NotContains(t, second, "screenshot")

	assert.Equal(t, entity.EventCompleted, evs[4].Type)
	assert.JSONEq(t, `{"summary":"Login page works"}`, string(evs[4].Data))

	assert.Equal(t, 1, h.browser.CloseCalls)
}

func TestRun_NoStepsStillCompletes(t *testing.T) {
	h := newHarness()

	code := h.bridge(false).Run(context.Background(), []string{"ollama", "llava", "https://example.com", "check"})

	assert.Equal(t, 0, code)
	evs := h.events(t)
	require.Len(t, evs, 2)
	assert.Equal(t, entity.EventInfo, evs[0].Type)
	assert.JSONEq(t, `{"summary":""}`, string(evs[1].Data))
}

func TestRun_AgentFailureClosesBrowserOnce(t *testing.T) {
	h := newHarness()
	h.agent.err = context.Canceled

	code := h.bridge(false).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "check"})

	assert.Equal(t, 1, code)
	evs := h.events(t)
	require.Len(t, evs, 2)
	assert.Equal(t, entity.EventInfo, evs[0].Type)
	assert.Equal(t, entity.EventError, evs[1].Type)
	assert.Equal(t, "Agent execution failed: context canceled", dataString(t, evs[1]))
	assert.Equal(t, 1, h.browser.CloseCalls)
}

func TestRun_BrowserCloseErrorDoesNotChangeExitCode(t *testing.T) {
	h := newHarness()
	h.browser.WithError("Close", errors.New("already gone"))

	code := h.bridge(false).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "check"})

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.browser.CloseCalls)
}

func TestRun_VerificationAttached(t *testing.T) {
	h := newHarness()
	h.agent.history = &entity.AgentHistory{Items: []entity.HistoryItem{
		{Results: []entity.ActionResult{{IsDone: true, Success: true, ExtractedContent: "verified"}}},
	}}
	h.verifier = &fakeVerifier{result: &entity.EvaluationResult{Success: true, Confidence: 0.9, Issues: []string{}, Feedback: "ok"}}

	code := h.bridge(true).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "check"})

	assert.Equal(t, 0, code)
	evs := h.events(t)
	last := evs[len(evs)-1]
	assert.JSONEq(t,
		`{"summary":"verified","verification":{"success":true,"confidence":0.9,"issues":[],"feedback":"ok"}}`,
		string(last.Data))
	assert.Equal(t, "verified", h.verifier.criteria.ActualResult)
	assert.Equal(t, h.agentTask, h.verifier.criteria.TaskDescription)
}

func TestRun_VerificationErrorIsDropped(t *testing.T) {
	h := newHarness()
	h.verifier = &fakeVerifier{err: errors.New("llm down")}

	code := h.bridge(true).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "check"})

	assert.Equal(t, 0, code)
	evs := h.events(t)
	assert.JSONEq(t, `{"summary":""}`, string(evs[len(evs)-1].Data))
}

func TestRun_ExtraArgumentsIgnored(t *testing.T) {
	h := newHarness()

	code := h.bridge(false).Run(context.Background(), []string{"openai", "gpt-4o", "https://example.com", "check", "extra"})

	assert.Equal(t, 0, code)
	assert.Contains(t, h.agentTask, "check. At each step")
}

func TestRun_AgentStoppedByFailuresStillStreamsSteps(t *testing.T) {
	h := newHarness()
	h.browser.
		WithElements(entity.InteractiveElement{Index: 7, Tag: "button", Text: "Checkout"}).
		WithError("ClickElement", errors.New("element with index 7 not found"))

	llm := mocks.NewMockLLM()
	for i := 0; i < 3; i++ {
		llm.WithReply(`{"thinking": "try checkout", "action": [{"name": "click_element", "params": {"index": 7}}]}`)
	}

	log := logger.NewNopLogger()
	b := New(Factories{
		NewLLM: func(entity.Provider, string) (output.LLMPort, error) { return llm, nil },
		NewBrowser: func(context.Context) (output.BrowserPort, error) {
			return h.browser, nil
		},
		NewAgent: func(task string, llm output.LLMPort, browser output.BrowserPort) (input.AgentRunner, error) {
			tools := service.NewToolRegistry()
			tool.RegisterBrowserTools(tools, browser, log)
			return agent.New(agent.DefaultConfig(task), llm, browser, tools, log)
		},
	}, events.NewEmitter(&h.out), log, false)

	code := b.Run(context.Background(), []string{"openai", "gpt-4o", "https://shop.example", "buy a hat"})

	assert.Equal(t, 0, code)
	evs := h.events(t)
	require.Len(t, evs, 5)
	assert.Equal(t, entity.EventInfo, evs[0].Type)
	for i := 1; i <= 3; i++ {
		require.Equal(t, entity.EventStep, evs[i].Type)
		var step entity.StepSummary
		require.NoError(t, json.Unmarshal(evs[i].Data, &step))
		assert.Equal(t, i, step.StepNumber)
		assert.Equal(t, "Checkout", step.Goal)
		assert.Equal(t, entity.StepFailed, step.Result)
		assert.Equal(t, "element with index 7 not found", step.Details)
	}
	assert.Equal(t, entity.EventCompleted, evs[4].Type)
	assert.JSONEq(t, `{"summary":""}`, string(evs[4].Data))
	assert.Equal(t, 1, h.browser.CloseCalls)
}
