package collector

import (
	"fmt"
	"testing"

	"github.com/testbeacon/testbeacon/models"
)

func TestCountsAddUp(t *testing.T) {
	c := New(Options{})
	c.Intake(models.TestOutcome{Title: "login", Status: models.StatusPassed, DurationMS: 1200})
	c.Intake(models.TestOutcome{Title: "cart add", Status: models.StatusPassed, DurationMS: 800})
	c.Intake(models.TestOutcome{Title: "checkout", Status: models.StatusFailed, DurationMS: 4000, Error: "timeout waiting for selector"})
	c.Intake(models.TestOutcome{Title: "search", Status: models.StatusPassed, DurationMS: 300})
	c.Intake(models.TestOutcome{Title: "payment", Status: models.StatusFailed, DurationMS: 2500})

	agg := c.Finalize()
	if agg.Total != 5 || agg.Passed != 3 || agg.Failed != 2 || agg.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", agg)
	}
	if agg.Passed+agg.Failed+agg.Skipped != agg.Total {
		t.Fatalf("count invariant broken: %+v", agg)
	}
	if agg.PassRate != 60 {
		t.Fatalf("expected pass rate 60, got %v", agg.PassRate)
	}
	if agg.DurationMS != 8800 {
		t.Fatalf("expected cumulative duration 8800, got %d", agg.DurationMS)
	}
}

func TestEmptyRunHasZeroPassRate(t *testing.T) {
	c := New(Options{})
	agg := c.Finalize()
	if agg.Total != 0 {
		t.Fatalf("expected empty aggregate, got %+v", agg)
	}
	if agg.PassRate != 0 {
		t.Fatalf("pass rate of an empty run must be 0, got %v", agg.PassRate)
	}
}

func TestFailureListKeepsFirstN(t *testing.T) {
	c := New(Options{MaxFailures: 3})
	for i := 0; i < 10; i++ {
		c.Intake(models.TestOutcome{
			Title:  fmt.Sprintf("test-%d", i),
			Status: models.StatusFailed,
			Error:  fmt.Sprintf("boom %d", i),
		})
	}

	agg := c.Finalize()
	if agg.Failed != 10 {
		t.Fatalf("expected 10 failures counted, got %d", agg.Failed)
	}
	if len(agg.Failures) != 3 {
		t.Fatalf("expected failure details capped at 3, got %d", len(agg.Failures))
	}
	for i, f := range agg.Failures {
		want := fmt.Sprintf("test-%d", i)
		if f.Title != want {
			t.Fatalf("expected first failures kept in order, got %q at %d", f.Title, i)
		}
	}
}

func TestUnknownStatusCountsAsSkipped(t *testing.T) {
	c := New(Options{})
	c.Intake(models.TestOutcome{Title: "weird", Status: "exploded"})

	agg := c.Finalize()
	if agg.Total != 1 || agg.Skipped != 1 {
		t.Fatalf("unknown status must still advance counters: %+v", agg)
	}
	if agg.Passed+agg.Failed+agg.Skipped != agg.Total {
		t.Fatalf("count invariant broken: %+v", agg)
	}
}

func TestErrorReducedToFirstLine(t *testing.T) {
	c := New(Options{})
	c.Intake(models.TestOutcome{
		Title:  "checkout",
		Status: models.StatusFailed,
		Error:  "expect(received).toBe(expected)\n    at Object.<anonymous>\n    at runTest",
	})

	agg := c.Finalize()
	if len(agg.Failures) != 1 {
		t.Fatalf("expected one failure detail, got %d", len(agg.Failures))
	}
	if agg.Failures[0].Error != "expect(received).toBe(expected)" {
		t.Fatalf("expected first line only, got %q", agg.Failures[0].Error)
	}
}

func TestFinalizeSnapshotIsStable(t *testing.T) {
	c := New(Options{})
	c.Intake(models.TestOutcome{Title: "a", Status: models.StatusFailed, Error: "x"})
	snap := c.Finalize()

	c.Intake(models.TestOutcome{Title: "b", Status: models.StatusFailed, Error: "y"})
	if snap.Failed != 1 || len(snap.Failures) != 1 {
		t.Fatalf("snapshot changed after later intake: %+v", snap)
	}
}
