package ingest

import (
	"strings"
	"testing"

	"github.com/testbeacon/testbeacon/internal/collector"
	"github.com/testbeacon/testbeacon/models"
)

func TestEventsFeedsCollector(t *testing.T) {
	stream := strings.Join([]string{
		`{"event":"test","title":"login works","file":"auth.spec.ts","status":"passed","duration_ms":1200}`,
		`{"event":"test","title":"checkout completes","file":"shop.spec.ts","status":"failed","duration_ms":4200,"error":"timeout 30000ms exceeded\n  at page.click"}`,
		`{"event":"test","title":"legacy flow","file":"old.spec.ts","status":"skipped"}`,
		`{"event":"run","status":"failed"}`,
	}, "\n")

	c := collector.New(collector.Options{})
	n, err := Events(strings.NewReader(stream), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 outcomes, got %d", n)
	}

	agg := c.Finalize()
	if agg.Total != 3 || agg.Passed != 1 || agg.Failed != 1 || agg.Skipped != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if len(agg.Failures) != 1 || agg.Failures[0].Error != "timeout 30000ms exceeded" {
		t.Fatalf("failure error must be the first line, got %+v", agg.Failures)
	}
}

func TestEventsSkipsMalformedLines(t *testing.T) {
	stream := strings.Join([]string{
		`{"event":"test","title":"a","status":"passed"}`,
		`{not json`,
		``,
		`{"event":"test","title":"b","status":"passed"}`,
	}, "\n")

	c := collector.New(collector.Options{})
	n, err := Events(strings.NewReader(stream), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("malformed lines must be skipped, got %d outcomes", n)
	}
}

func TestEventAttachments(t *testing.T) {
	e := Event{
		Event:  "test",
		Title:  "checkout",
		Status: "failed",
		Attachments: []Attachment{
			{Type: "screenshot", Path: "/tmp/shot.png"},
			{Type: "trace", Path: "/tmp/trace.zip"},
		},
	}
	o := e.Outcome()
	if o.Screenshot != "/tmp/shot.png" {
		t.Fatalf("screenshot not mapped: %+v", o)
	}
	if o.Trace != "/tmp/trace.zip" {
		t.Fatalf("trace not mapped: %+v", o)
	}
	if o.Status != models.StatusFailed {
		t.Fatalf("status not mapped: %q", o.Status)
	}
}
