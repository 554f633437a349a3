package models

// Status is the terminal state of a single test.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// MapStatus normalises runner-specific status strings to Status.
// Unrecognised values map to StatusSkipped so run totals stay consistent.
func MapStatus(raw string) Status {
	switch raw {
	case "passed", "pass", "ok", "success":
		return StatusPassed
	case "failed", "fail", "error", "timedOut", "interrupted":
		return StatusFailed
	case "skipped", "skip", "pending", "disabled":
		return StatusSkipped
	default:
		return StatusSkipped
	}
}

// TestOutcome is the completion record for a single test. It is created once
// when the runner reports the test and never mutated afterwards.
type TestOutcome struct {
	Title      string `json:"title"`
	File       string `json:"file,omitempty"`
	Status     Status `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	// Error holds the first line of the failure message, if any.
	Error      string `json:"error,omitempty"`
	Browser    string `json:"browser,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
	Trace      string `json:"trace,omitempty"`
	Timestamp  string `json:"timestamp"` // RFC 3339
}

// FailureDetail is the condensed per-failure record kept in a RunAggregate.
type FailureDetail struct {
	Title      string `json:"title"`
	File       string `json:"file,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Screenshot string `json:"screenshot,omitempty"`
}

// RunAggregate is the accumulated result of one test run. It is built
// incrementally by the collector and frozen by Finalize.
type RunAggregate struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	// DurationMS is the sum of individual test durations.
	DurationMS int64 `json:"duration_ms"`
	// ElapsedMS is the wall-clock time of the whole run.
	ElapsedMS int64 `json:"elapsed_ms"`
	// PassRate is passed/total as a percentage, 0 when total is 0.
	PassRate float64 `json:"pass_rate"`
	// Failures keeps the first N failure details, bounded by the collector cap.
	Failures    []FailureDetail `json:"failures,omitempty"`
	StartedAt   string          `json:"started_at"`
	CompletedAt string          `json:"completed_at"`
}

// RunMeta carries run context that is not derived from test events:
// which suite ran, where, and on what revision.
type RunMeta struct {
	Suite     string `json:"suite"`
	Branch    string `json:"branch,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	CI        bool   `json:"ci"`
	ReportURL string `json:"report_url,omitempty"`
}
