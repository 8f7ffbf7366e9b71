// Package poll repeats a status check at a fixed interval until it reports a
// terminal outcome or an attempt budget runs out.
//
// Until is the only entry point. A check returns (value, done, err): done
// ends polling successfully, a non-nil err ends it immediately, and anything
// else schedules another check after Interval. No sleep follows the final
// attempt, so the total wait is bounded by MaxAttempts x Interval. Callers
// map ErrExhausted to their own timeout classification.
package poll
