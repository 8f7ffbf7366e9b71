// Package logging assembles structured slog loggers and formatting helpers used
// across reelsmith.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with run IDs, stage names, and correlation IDs. The "auto"
// format picks the console handler when stdout is a terminal and JSON
// otherwise. A no-op logger is provided for tests and wiring code that cannot
// fail.
package logging
