package runner

import (
	"fmt"
	"time"

	"tomlsort/internal/diff"
	"tomlsort/internal/errors"
)

// Status is the outcome for one file.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusSorted    Status = "sorted"
	StatusUnsorted  Status = "unsorted"
	StatusCached    Status = "cached"
	StatusError     Status = "error"
)

// FileResult describes what happened to one file.
type FileResult struct {
	Path   string            `json:"path" yaml:"path"`
	Status Status            `json:"status" yaml:"status"`
	Stats  *diff.Stats       `json:"stats,omitempty" yaml:"stats,omitempty"`
	Diff   string            `json:"diff,omitempty" yaml:"diff,omitempty"`
	Error  *errors.SortError `json:"error,omitempty" yaml:"error,omitempty"`

	output string
}

// Summary counts files per status.
type Summary struct {
	Files     int `json:"files" yaml:"files"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Sorted    int `json:"sorted" yaml:"sorted"`
	Unsorted  int `json:"unsorted" yaml:"unsorted"`
	Cached    int `json:"cached" yaml:"cached"`
	Errors    int `json:"errors" yaml:"errors"`
}

// Report is the result of one run.
type Report struct {
	RunID    string        `json:"runId" yaml:"runId"`
	Mode     string        `json:"mode" yaml:"mode"`
	Files    []FileResult  `json:"files" yaml:"files"`
	Summary  Summary       `json:"summary" yaml:"summary"`
	Duration time.Duration `json:"durationNs" yaml:"durationNs"`
}

func newReport(runID string, mode Mode, files []FileResult, elapsed time.Duration) *Report {
	r := &Report{
		RunID:    runID,
		Mode:     mode.String(),
		Files:    files,
		Duration: elapsed,
	}
	for _, f := range files {
		r.Summary.Files++
		switch f.Status {
		case StatusUnchanged:
			r.Summary.Unchanged++
		case StatusSorted:
			r.Summary.Sorted++
		case StatusUnsorted:
			r.Summary.Unsorted++
		case StatusCached:
			r.Summary.Cached++
		case StatusError:
			r.Summary.Errors++
		}
	}
	return r
}

// Err folds the report into one error for the exit status. Read failures
// come first, then other file errors, then unsorted files in check mode.
func (r *Report) Err() error {
	var first *errors.SortError
	for _, f := range r.Files {
		if f.Error == nil {
			continue
		}
		switch f.Error.Code {
		case errors.FileNotFound, errors.ReadFailed:
			return f.Error
		}
		if first == nil {
			first = f.Error
		}
	}
	if first != nil {
		return first
	}

	if r.Summary.Unsorted > 0 {
		noun := "files are"
		if r.Summary.Unsorted == 1 {
			noun = "file is"
		}
		return errors.New(errors.CheckFailed, fmt.Sprintf("%d %s not sorted", r.Summary.Unsorted, noun), nil)
	}
	return nil
}

// Unsorted returns the paths of unsorted files.
func (r *Report) Unsorted() []string {
	var out []string
	for _, f := range r.Files {
		if f.Status == StatusUnsorted {
			out = append(out, f.Path)
		}
	}
	return out
}
