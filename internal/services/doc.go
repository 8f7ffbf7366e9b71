// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the pipeline's error kinds (upstream, timeout, subprocess,
//     transfer, persistence).
//
// Subpackages hold one client per external capability. Each client is an
// explicit handle constructed from config and passed into the pipeline, so
// tests can substitute httptest servers or fakes.
package services
