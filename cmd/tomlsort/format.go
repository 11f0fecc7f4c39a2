package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"tomlsort/internal/errors"
	"tomlsort/internal/runner"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatHuman:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatReport formats a run report according to the specified format.
// With quiet, the human format only carries diffs and errors.
func FormatReport(report *runner.Report, format OutputFormat, quiet bool) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(report)
	case FormatYAML:
		return formatYAML(report)
	case FormatHuman:
		return formatHuman(report, quiet), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func writeReport(w io.Writer, report *runner.Report, format OutputFormat, quiet bool) error {
	out, err := FormatReport(report, format, quiet)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	_, err = io.WriteString(w, out)
	return err
}

// formatJSON formats the report as JSON
func formatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// formatYAML formats the report as YAML
func formatYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the report in human-readable format
func formatHuman(report *runner.Report, quiet bool) string {
	var b strings.Builder

	for _, f := range report.Files {
		switch f.Status {
		case runner.StatusSorted:
			if !quiet && report.Mode == runner.ModeWrite.String() && f.Path != runner.StdinPath {
				b.WriteString(fmt.Sprintf("sorted %s\n", f.Path))
			}
		case runner.StatusUnsorted:
			if !quiet {
				line := fmt.Sprintf("unsorted %s", f.Path)
				if f.Stats != nil {
					line += fmt.Sprintf(" (+%d -%d)", f.Stats.Added, f.Stats.Removed)
				}
				b.WriteString(line + "\n")
			}
			if f.Diff != "" {
				b.WriteString(f.Diff)
			}
		case runner.StatusError:
			if f.Error != nil {
				b.WriteString(fmt.Sprintf("error %s\n", f.Error.Error()))
				for _, fix := range f.Error.SuggestedFixes {
					if fix.Command != "" {
						b.WriteString(fmt.Sprintf("  $ %s\n", expandFix(fix.Command, f.Path)))
					}
				}
			}
		}
	}

	if !quiet {
		b.WriteString(summaryLine(report))
		if unsorted := report.Unsorted(); len(unsorted) > 0 {
			for _, fix := range errors.GetSuggestedFixes(errors.CheckFailed) {
				b.WriteString(fmt.Sprintf("  $ %s\n", expandFix(fix.Command, strings.Join(unsorted, " "))))
			}
		}
	}
	return b.String()
}

// summaryLine is the closing line of the human report.
func summaryLine(report *runner.Report) string {
	s := report.Summary
	parts := []string{fmt.Sprintf("%d %s", s.Files, plural(s.Files, "file", "files"))}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(s.Sorted, "sorted")
	add(s.Unsorted, "unsorted")
	add(s.Unchanged, "unchanged")
	add(s.Cached, "cached")
	add(s.Errors, plural(s.Errors, "error", "errors"))
	return strings.Join(parts, ", ") + "\n"
}

// expandFix fills the placeholders of a suggested command.
func expandFix(command, path string) string {
	r := strings.NewReplacer("${path}", path, "${paths}", path)
	return r.Replace(command)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
