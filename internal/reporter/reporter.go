// Package reporter renders duplicate detection results as text, JSON,
// or YAML.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dupesweep/dupesweep/internal/filter"
	"github.com/dupesweep/dupesweep/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatText    OutputFormat = "text"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatSummary OutputFormat = "summary"
)

// Results bundles the ordered duplicate groups for rendering.
type Results struct {
	Files []filter.Group
	Dirs  []filter.Group
}

// Reporter handles report generation
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{
		writer: writer,
		format: format,
	}
}

// Report renders the duplicate groups in the configured format
func (r *Reporter) Report(res *Results) error {
	switch r.format {
	case FormatText:
		return r.reportText(res)
	case FormatJSON:
		return r.reportJSON(res)
	case FormatYAML:
		return r.reportYAML(res)
	case FormatSummary:
		return r.reportSummary(res)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

// reportText lists each group with its members, canonical first
func (r *Reporter) reportText(res *Results) error {
	printGroups := func(label string, groups []filter.Group) {
		if len(groups) == 0 {
			return
		}
		fmt.Fprintf(r.writer, "=== Duplicate %s ===\n", label)
		for i, g := range groups {
			fmt.Fprintf(r.writer, "\nGroup %d  [%s]  %d copies, %s recoverable\n",
				i+1, shortHash(g.Hash), len(g.Paths), utils.FormatBytes(g.RecoverableSize()))
			for j, p := range g.Paths {
				marker := " "
				if j == 0 {
					marker = "*" // canonical, kept on delete
				}
				fmt.Fprintf(r.writer, "  %s %s (%s)\n", marker, p, utils.FormatBytes(filter.PathSize(p)))
			}
		}
		fmt.Fprintln(r.writer)
	}

	printGroups("Files", res.Files)
	printGroups("Directories", res.Dirs)

	return r.reportSummary(res)
}

// reportSummary prints totals only
func (r *Reporter) reportSummary(res *Results) error {
	recoverable := filter.RecoverableSpace(res.Files) + filter.RecoverableSpace(res.Dirs)

	fmt.Fprintf(r.writer, "=== Duplicate Summary ===\n")
	fmt.Fprintf(r.writer, "File groups: %d\n", len(res.Files))
	fmt.Fprintf(r.writer, "Directory groups: %d\n", len(res.Dirs))
	fmt.Fprintf(r.writer, "Recoverable space: %s\n", utils.FormatBytes(recoverable))

	return nil
}

// jsonGroup is the serialized form of one duplicate group
type jsonGroup struct {
	Hash        string   `json:"hash" yaml:"hash"`
	Paths       []string `json:"paths" yaml:"paths"`
	TotalSize   int64    `json:"total_size" yaml:"total_size"`
	Recoverable int64    `json:"recoverable" yaml:"recoverable"`
}

type jsonReport struct {
	Timestamp            string      `json:"timestamp" yaml:"timestamp"`
	FileGroups           []jsonGroup `json:"file_groups" yaml:"file_groups"`
	DirGroups            []jsonGroup `json:"dir_groups" yaml:"dir_groups"`
	Recoverable          int64       `json:"recoverable" yaml:"recoverable"`
	RecoverableFormatted string      `json:"recoverable_formatted" yaml:"recoverable_formatted"`
}

func buildReport(res *Results) jsonReport {
	convert := func(groups []filter.Group) []jsonGroup {
		out := make([]jsonGroup, 0, len(groups))
		for _, g := range groups {
			out = append(out, jsonGroup{
				Hash:        g.Hash,
				Paths:       g.Paths,
				TotalSize:   g.TotalSize(),
				Recoverable: g.RecoverableSize(),
			})
		}
		return out
	}

	recoverable := filter.RecoverableSpace(res.Files) + filter.RecoverableSpace(res.Dirs)
	return jsonReport{
		Timestamp:            time.Now().Format(time.RFC3339),
		FileGroups:           convert(res.Files),
		DirGroups:            convert(res.Dirs),
		Recoverable:          recoverable,
		RecoverableFormatted: utils.FormatBytes(recoverable),
	}
}

// reportJSON generates a JSON report
func (r *Reporter) reportJSON(res *Results) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildReport(res))
}

// reportYAML generates a YAML report
func (r *Reporter) reportYAML(res *Results) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(buildReport(res))
}

// SaveToFile saves the report to a file
func SaveToFile(res *Results, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reporter := New(file, format)
	return reporter.Report(res)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
