package entity

type EventType string

const (
	EventError     EventType = "error"
	EventInfo      EventType = "info"
	EventStep      EventType = "step"
	EventCompleted EventType = "completed"
)

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

type StepOutcome string

const (
	StepSuccess StepOutcome = "success"
	StepFailed  StepOutcome = "failed"
)

const thinkingPlaceholder = "Thinking..."

type StepSummary struct {
	StepNumber int         `json:"stepNumber"`
	Goal       string      `json:"goal"`
	Action     string      `json:"action"`
	Thinking   string      `json:"thinking"`
	Result     StepOutcome `json:"result"`
	Details    string      `json:"details"`
	Screenshot string      `json:"screenshot,omitempty"`
}

func NewStepSummary(number int, item HistoryItem) StepSummary {
	summary := StepSummary{
		StepNumber: number,
		Goal:       thinkingPlaceholder,
		Action:     item.Action(),
		Result:     StepSuccess,
		Details:    item.Error(),
		Screenshot: item.State.Screenshot.Base64(),
	}
	if el := item.InteractedElement(); el != nil {
		summary.Goal = el.Label()
	}
	if item.ModelOutput != nil {
		summary.Thinking = item.ModelOutput.Thinking
	}
	if summary.Details != "" {
		summary.Result = StepFailed
	}
	return summary
}

type CompletedSummary struct {
	Summary      string            `json:"summary"`
	Verification *EvaluationResult `json:"verification,omitempty"`
}
