// Package gitmeta stamps gate runs with the identity of the working
// tree they executed against.
package gitmeta

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// Info identifies the repository state of a run.
type Info struct {
	CommitSHA string
	ShortSHA  string
	Branch    string
}

// Describe reads HEAD of the repository containing dir, searching
// parent directories for the .git directory. Callers treat errors as
// "not a repository" and stamp nothing.
func Describe(dir string) (*Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	sha := head.Hash().String()
	return &Info{
		CommitSHA: sha,
		ShortSHA:  sha[:12],
		Branch:    head.Name().Short(),
	}, nil
}
