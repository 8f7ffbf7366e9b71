// Package preflight provides readiness checks for the external services,
// binaries, and filesystem paths a generation run depends on.
//
// These checks run in two contexts:
//   - "reelsmith check" renders every result as a table and exits non-zero
//     when a required check fails.
//   - "reelsmith serve" runs the filesystem and binary checks at startup and
//     logs failures as warnings, so a misconfigured host is visible before
//     the first trigger arrives.
//
// Network checks are single attempts with short timeouts; they never retry.
package preflight
