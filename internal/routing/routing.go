// Package routing loads optional per-suite channel routing rules from a YAML
// file. Without rules every active channel receives every notification; rules
// restrict which channels a suite's summaries go to.
package routing

import (
	"fmt"
	"os"
	"path"

	"go.yaml.in/yaml/v3"
)

// Rule routes suites matching a glob pattern to a subset of channels.
type Rule struct {
	// Suite is a glob pattern matched against the suite name (path.Match).
	Suite string `yaml:"suite"`
	// Channels lists channel names allowed for matching suites.
	Channels []string `yaml:"channels"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// Router answers which channels a given suite may notify.
type Router struct {
	rules []Rule
}

// Load reads a routing rules file.
func Load(file string) (*Router, error) {
	data, err := os.ReadFile(file) // #nosec G304 -- path comes from the user's own config
	if err != nil {
		return nil, fmt.Errorf("reading routing rules: %w", err)
	}
	return Parse(data)
}

// Parse builds a Router from raw YAML.
func Parse(data []byte) (*Router, error) {
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing routing rules: %w", err)
	}
	for _, r := range rf.Rules {
		if r.Suite == "" {
			return nil, fmt.Errorf("routing rule without suite pattern")
		}
		if _, err := path.Match(r.Suite, "probe"); err != nil {
			return nil, fmt.Errorf("invalid suite pattern %q: %w", r.Suite, err)
		}
	}
	return &Router{rules: rf.Rules}, nil
}

// Len returns the number of loaded rules.
func (r *Router) Len() int { return len(r.rules) }

// Allowed reports whether channel may receive notifications for suite.
// The first rule whose pattern matches the suite wins; a suite matching no
// rule goes to all channels.
func (r *Router) Allowed(suite, channel string) bool {
	for _, rule := range r.rules {
		ok, err := path.Match(rule.Suite, suite)
		if err != nil || !ok {
			continue
		}
		for _, c := range rule.Channels {
			if c == channel {
				return true
			}
		}
		return false
	}
	return true
}
