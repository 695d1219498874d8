package domain

// Progress locates the current step within the visible sequence.
type Progress struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// StepView is the presentation-facing projection of the current step: what
// to render, where the session is, and whether completing this step submits.
type StepView struct {
	Step     Step     `json:"step"`
	Prompt   string   `json:"prompt"`
	Progress Progress `json:"progress"`
	First    bool     `json:"first"`
	Terminal bool     `json:"terminal"`
}
