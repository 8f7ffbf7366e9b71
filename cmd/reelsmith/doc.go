// Command reelsmith generates narrated highlight reels and serves the
// resulting catalogue.
//
// The CLI wraps the pipeline package: `run` executes one generation end to
// end, `serve` exposes the HTTP trigger and listing API, `list` prints the
// stored content records, and `check` tests the configured directories,
// binaries, and upstream services. Configuration is loaded lazily through a
// shared commandContext so subcommands such as `config init` can opt out of
// loading it entirely.
package main
