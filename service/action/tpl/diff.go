package tpl

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// DiffStats summarizes a rendered file change
type DiffStats struct {
	Insertions int
	Deletions  int
	Hunks      int
}

// DiffResult holds a unified diff and its stats
type DiffResult struct {
	Patch string
	Stats DiffStats
}

var ErrNoChange = errors.New("no change between old and new")

// GenerateDiff computes a unified diff between old and new content of path.
func GenerateDiff(old, new []byte, path string, contextLines int) (DiffResult, error) {
	if bytes.Equal(old, new) {
		return DiffResult{}, ErrNoChange
	}
	if path == "" {
		path = "file"
	}
	if contextLines <= 0 {
		contextLines = 3
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(new)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return DiffResult{}, fmt.Errorf("diff generation: %w", err)
	}
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patch))
	if err != nil {
		return DiffResult{Patch: patch}, fmt.Errorf("diff parse: %w", err)
	}
	stat := fileDiff.Stat()
	return DiffResult{Patch: patch, Stats: DiffStats{
		Insertions: int(stat.Added + stat.Changed),
		Deletions:  int(stat.Deleted + stat.Changed),
		Hunks:      len(fileDiff.Hunks),
	}}, nil
}
