// Package pipeline orchestrates a generation run.
//
// A Pipeline holds an immutable Request plus the collaborators for each stage
// and executes them strictly in order:
//
//	image → video → download → commentary → speech → muxing → publish →
//	metadata_record → cleanup
//
// Every run gets its own session directory (see internal/session) that is
// released before Run returns, whatever the outcome. The content record is
// written last, so a failed run never leaves one behind.
//
// BuildFromConfig wires the production collaborators; tests construct a
// Pipeline directly with fakes.
package pipeline
