package entity

type EvaluationResult struct {
	Success    bool     `json:"success"`
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues"`
	Feedback   string   `json:"feedback"`
}

type EvaluationCriteria struct {
	TaskDescription string
	ActualResult    string
	Steps           int
	Errors          []string
}
