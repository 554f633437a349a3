package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/testbeacon/testbeacon/internal/collector"
	"github.com/testbeacon/testbeacon/models"
)

// junitSuites is the <testsuites> root. Some runners emit a bare <testsuite>
// root instead; both shapes are accepted.
type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name  string      `xml:"name,attr"`
	Cases []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	File      string        `xml:"file,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure"`
	Error     *junitMessage `xml:"error"`
	Skipped   *junitMessage `xml:"skipped"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// JUnit parses a JUnit XML report and feeds every test case into c.
// Returns the number of outcomes ingested.
func JUnit(r io.Reader, c *collector.Collector) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading junit report: %w", err)
	}

	var suites junitSuites
	if err := xml.Unmarshal(data, &suites); err != nil {
		// Retry with a bare <testsuite> root.
		var single junitSuite
		if err2 := xml.Unmarshal(data, &single); err2 != nil {
			return 0, fmt.Errorf("parsing junit report: %w", err)
		}
		suites.Suites = []junitSuite{single}
	}

	n := 0
	for _, s := range suites.Suites {
		for _, tc := range s.Cases {
			c.Intake(tc.outcome())
			n++
		}
	}
	return n, nil
}

func (tc junitCase) outcome() models.TestOutcome {
	o := models.TestOutcome{
		Title:      tc.Name,
		File:       tc.File,
		Status:     models.StatusPassed,
		DurationMS: int64(tc.Time * 1000),
	}
	if o.File == "" && tc.ClassName != "" {
		o.File = tc.ClassName
	}

	switch {
	case tc.Failure != nil:
		o.Status = models.StatusFailed
		o.Error = junitText(tc.Failure)
	case tc.Error != nil:
		o.Status = models.StatusFailed
		o.Error = junitText(tc.Error)
	case tc.Skipped != nil:
		o.Status = models.StatusSkipped
	}
	return o
}

func junitText(m *junitMessage) string {
	if m.Message != "" {
		return m.Message
	}
	return strings.TrimSpace(m.Body)
}
