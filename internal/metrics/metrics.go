// Package metrics defines the minimal instrumentation surface used by the
// profiling pipeline and HTTP API. Backends (Datadog, no-op) implement it;
// core code never imports a vendor SDK.
package metrics

// Labels are free-form key/value tags attached to an observation.
type Labels map[string]string

// Backend receives metric observations.
//
// Implementations must be safe for concurrent use: the HTTP API and pipeline
// goroutines record from wherever they run.
type Backend interface {
	// IncCounter adds delta to a named counter. Non-positive deltas are
	// ignored.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample of a named distribution.
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered observations now.
	Flush() error

	// Close stops background work and performs a final Flush.
	Close() error
}

// Metric names recorded by the application. Backends may aggregate a subset
// and ignore the rest.
const (
	RunsTotal          = "dataprof_runs_total"           // labels: status
	RowsTotal          = "dataprof_rows_total"           // labels: kind (before|after|duplicates)
	RunDurationSeconds = "dataprof_run_duration_seconds" // labels: status
	HTTPRequestsTotal  = "dataprof_http_requests_total"  // labels: status
	HTTPDurationSecs   = "dataprof_http_request_duration_seconds"
)

// Nop is a Backend that discards everything. Useful as the default when no
// metrics backend is configured.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }
func (Nop) Close() error                             { return nil }

var _ Backend = Nop{}
