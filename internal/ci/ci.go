// Package ci detects whether the process is running inside a CI environment
// and, where possible, which one.
package ci

import "os"

// markers maps a well-known environment variable to the CI system it implies.
// CI=true is the generic convention honoured by most providers.
var markers = []struct {
	env  string
	name string
}{
	{"GITHUB_ACTIONS", "github-actions"},
	{"GITLAB_CI", "gitlab-ci"},
	{"JENKINS_URL", "jenkins"},
	{"BUILDKITE", "buildkite"},
	{"CIRCLECI", "circleci"},
	{"TF_BUILD", "azure-pipelines"},
	{"CI", "generic"},
}

// IsCI reports whether a recognised CI environment variable is set.
func IsCI() bool {
	return Provider() != ""
}

// Provider returns the detected CI system name, or "" when not in CI.
func Provider() string {
	for _, m := range markers {
		if v := os.Getenv(m.env); v != "" && v != "false" && v != "0" {
			return m.name
		}
	}
	return ""
}
