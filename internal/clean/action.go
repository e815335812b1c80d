package clean

import "fmt"

// Severity classifies a cleaning log entry.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
)

// Action is one entry in the cleaning log: a structured record of something
// the pipeline did (or skipped) during a single run. The log is append-only
// and scoped to one orchestrator invocation.
type Action struct {
	Stage    string   `json:"stage"`
	Column   string   `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Log is the ordered cleaning log for one run.
type Log []Action

// Infof appends an informational entry.
func (l *Log) Infof(stage, column, format string, args ...any) {
	*l = append(*l, Action{Stage: stage, Column: column, Severity: SeverityInfo, Detail: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning entry. Warnings record per-column recoveries; they
// never abort the run.
func (l *Log) Warnf(stage, column, format string, args ...any) {
	*l = append(*l, Action{Stage: stage, Column: column, Severity: SeverityWarn, Detail: fmt.Sprintf(format, args...)})
}

// FillMethod names the imputation strategy chosen for a column.
type FillMethod string

const (
	FillMean        FillMethod = "mean"
	FillMedian      FillMethod = "median"
	FillMode        FillMethod = "mode"
	FillForwardFill FillMethod = "forward_fill"
)

// FillRecord describes one column's imputation: how many cells were missing,
// which strategy was selected, and the fill value applied. Produced once per
// column with at least one missing value; consumed only for reporting.
type FillRecord struct {
	Column       string     `json:"column"`
	MissingCount int        `json:"missing_count"`
	Method       FillMethod `json:"method"`
	FillValue    string     `json:"fill_value"`
}

// Rename records a column-name collision resolved by the normalizer.
type Rename struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Final      string `json:"final"`
}
