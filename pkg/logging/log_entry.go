package logging

import "context"

// LogEntry represents a structured log record.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// RunID identifies the search run the entry belongs to, when one is
	// attached to the context.
	RunID string

	// General structured data
	Fields map[string]interface{}
}

type contextKey string

const runIDKey contextKey = "pge-run-id"

// WithRunID attaches a search run identifier to the context so every log
// entry emitted below it can be correlated with that run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID extracts the run identifier from the context.
func GetRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok
}
