// Package session owns the per-run scratch directory and every local file a
// generation run creates.
//
// Open creates `<work_dir>/<id>` with a fresh run identifier and registers the
// directory as the first owned path. Path hands out registered file paths
// inside that directory. Release removes every registered path in reverse
// registration order, logs removal failures at debug level, and never returns
// an error. Release is idempotent and is meant to be deferred immediately
// after Open so it runs on success, failure, and panic alike.
package session
