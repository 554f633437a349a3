package ingest

import (
	"strings"
	"testing"

	"github.com/testbeacon/testbeacon/internal/collector"
)

const junitReport = `<?xml version="1.0" encoding="UTF-8"?>
<testsuites>
  <testsuite name="auth" tests="2">
    <testcase name="login works" file="auth.spec.ts" time="1.2"/>
    <testcase name="reset password" classname="auth.spec.ts" time="0.8">
      <failure message="expected 200 got 500">stack trace here</failure>
    </testcase>
  </testsuite>
  <testsuite name="shop" tests="1">
    <testcase name="legacy flow" time="0">
      <skipped/>
    </testcase>
  </testsuite>
</testsuites>`

func TestJUnitParsesSuites(t *testing.T) {
	c := collector.New(collector.Options{})
	n, err := JUnit(strings.NewReader(junitReport), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 cases, got %d", n)
	}

	agg := c.Finalize()
	if agg.Passed != 1 || agg.Failed != 1 || agg.Skipped != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if len(agg.Failures) != 1 {
		t.Fatalf("expected one failure, got %d", len(agg.Failures))
	}
	f := agg.Failures[0]
	if f.Error != "expected 200 got 500" {
		t.Fatalf("failure must carry the message attribute, got %q", f.Error)
	}
	if f.File != "auth.spec.ts" {
		t.Fatalf("classname must back-fill the file, got %q", f.File)
	}
}

func TestJUnitBareSuiteRoot(t *testing.T) {
	report := `<testsuite name="auth"><testcase name="login" time="0.5"/></testsuite>`
	c := collector.New(collector.Options{})
	n, err := JUnit(strings.NewReader(report), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 case, got %d", n)
	}
}

func TestJUnitRejectsGarbage(t *testing.T) {
	c := collector.New(collector.Options{})
	if _, err := JUnit(strings.NewReader("not xml at all"), c); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestJUnitMessageAttributeOnly(t *testing.T) {
	report := `<testsuites><testsuite name="s">
	<testcase name="slow select" time="3"><failure message="selector timed out"/></testcase>
	</testsuite></testsuites>`
	c := collector.New(collector.Options{})
	if _, err := JUnit(strings.NewReader(report), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := c.Finalize()
	if len(agg.Failures) != 1 {
		t.Fatalf("expected one failure, got %d", len(agg.Failures))
	}
	if agg.Failures[0].Error != "selector timed out" {
		t.Fatalf("failure with an empty body must keep the message attribute, got %q",
			agg.Failures[0].Error)
	}
}

func TestJUnitErrorElementCountsAsFailure(t *testing.T) {
	report := `<testsuites><testsuite name="s"><testcase name="boom" time="1">
	<error>panic: nil deref
more lines</error></testcase></testsuite></testsuites>`
	c := collector.New(collector.Options{})
	if _, err := JUnit(strings.NewReader(report), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := c.Finalize()
	if agg.Failed != 1 {
		t.Fatalf("error element must count as failed: %+v", agg)
	}
	if agg.Failures[0].Error != "panic: nil deref" {
		t.Fatalf("error text must reduce to the first line, got %q", agg.Failures[0].Error)
	}
}
