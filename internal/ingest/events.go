// Package ingest parses test-runner output into outcomes fed to a collector.
// Two formats are supported: a JSON-lines event stream emitted by runner
// hooks, and JUnit XML reports.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/testbeacon/testbeacon/internal/collector"
	"github.com/testbeacon/testbeacon/models"
)

// Attachment is a file the runner captured for a test.
type Attachment struct {
	Type string `json:"type"` // "screenshot" | "trace"
	Path string `json:"path"`
}

// Event is one line of the JSONL stream. Runner hooks emit a "test" event per
// completion and optionally a terminal "run" event.
type Event struct {
	Event       string       `json:"event"` // "test" | "run"
	Title       string       `json:"title,omitempty"`
	File        string       `json:"file,omitempty"`
	Status      string       `json:"status,omitempty"`
	DurationMS  int64        `json:"duration_ms,omitempty"`
	Error       string       `json:"error,omitempty"`
	Browser     string       `json:"browser,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Outcome converts a test event to its outcome record.
func (e Event) Outcome() models.TestOutcome {
	o := models.TestOutcome{
		Title:      e.Title,
		File:       e.File,
		Status:     models.MapStatus(e.Status),
		DurationMS: e.DurationMS,
		Error:      e.Error,
		Browser:    e.Browser,
		Timestamp:  e.Timestamp,
	}
	for _, a := range e.Attachments {
		switch a.Type {
		case "screenshot":
			o.Screenshot = a.Path
		case "trace":
			o.Trace = a.Path
		}
	}
	return o
}

// Events reads a JSONL stream and feeds every test event into c. Malformed
// lines are logged and skipped; the stream keeps going. Returns the number of
// outcomes ingested.
func Events(r io.Reader, c *collector.Collector) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	n := 0
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			slog.Warn("ingest: skipping malformed event line", "line", line, "error", err)
			continue
		}
		switch e.Event {
		case "test":
			c.Intake(e.Outcome())
			n++
		case "run":
			// Terminal marker; finalization is the caller's decision.
		default:
			slog.Warn("ingest: unknown event type", "line", line, "event", e.Event)
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading event stream: %w", err)
	}
	return n, nil
}
