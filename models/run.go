package models

// Run is the persisted record of a completed test run.
type Run struct {
	ID          int64   `json:"id"           db:"id"`
	Suite       string  `json:"suite"        db:"suite"`
	Branch      string  `json:"branch"       db:"branch"`
	Commit      string  `json:"commit"       db:"commit_sha"`
	CI          bool    `json:"ci"           db:"ci"`
	Total       int     `json:"total"        db:"total"`
	Passed      int     `json:"passed"       db:"passed"`
	Failed      int     `json:"failed"       db:"failed"`
	Skipped     int     `json:"skipped"      db:"skipped"`
	PassRate    float64 `json:"pass_rate"    db:"pass_rate"`
	DurationMS  int64   `json:"duration_ms"  db:"duration_ms"`
	ElapsedMS   int64   `json:"elapsed_ms"   db:"elapsed_ms"`
	ReportURL   string  `json:"report_url"   db:"report_url"`
	StartedAt   string  `json:"started_at"   db:"started_at"`
	CompletedAt string  `json:"completed_at" db:"completed_at"`
}

// RunOutcome is a persisted per-test outcome belonging to a Run.
type RunOutcome struct {
	ID         int64  `json:"id"          db:"id"`
	RunID      int64  `json:"run_id"      db:"run_id"`
	Title      string `json:"title"       db:"title"`
	File       string `json:"file"        db:"file"`
	Status     string `json:"status"      db:"status"`
	DurationMS int64  `json:"duration_ms" db:"duration_ms"`
	Error      string `json:"error"       db:"error_msg"`
	Browser    string `json:"browser"     db:"browser"`
	Screenshot string `json:"screenshot"  db:"screenshot"`
	Trace      string `json:"trace"       db:"trace"`
	Timestamp  string `json:"timestamp"   db:"timestamp"`
}
