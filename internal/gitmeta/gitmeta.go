// Package gitmeta reads branch, commit and dirty state from the working tree
// a test suite ran in, using go-git.
package gitmeta

import (
	"fmt"
	"log/slog"

	gogit "github.com/go-git/go-git/v5"
)

// Info is the git metadata attached to a run.
type Info struct {
	Branch string
	Commit string
	Dirty  bool
}

// Detect opens the repository containing path (searching parent directories)
// and reads HEAD. A missing repository is not an error; it returns an empty
// Info so runs outside a working tree still report cleanly.
func Detect(path string) Info {
	info, err := read(path)
	if err != nil {
		slog.Debug("No git metadata available", "path", path, "error", err)
		return Info{}
	}
	return info
}

func read(path string) (Info, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return Info{}, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("resolving HEAD: %w", err)
	}

	info := Info{
		Branch: head.Name().Short(),
		Commit: head.Hash().String(),
	}

	// Worktree status is best-effort; a huge tree can be slow to scan and the
	// dirty flag is informational only.
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info, nil
}
