// Package notifications announces run outcomes to operators and downstream
// systems.
//
// Two transports are available and may be enabled together:
//   - ntfy: a short human-readable message with title, tags, priority, and a
//     click-through link to the published reel.
//   - AMQP: the JSON event {event, run_id, record?, error?, kind?, timestamp}
//     published to a durable topic exchange for consumers such as schedulers
//     or social posting workers.
//
// NewService returns a no-op implementation when nothing is configured.
// Delivery failures are returned to the caller, which logs them; they never
// change the outcome of a run.
package notifications
