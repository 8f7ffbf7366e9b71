// Package imagegen turns a text prompt into a hosted image through an
// OpenAI-compatible images API.
//
// Client.Generate posts {model, prompt, n: 1, size, response_format: "url"} to
// `<base_url>/images/generations` and returns the first URL in the response.
// Validation failures wrap services.ErrValidation; transport, status, and
// decoding failures (including a response without a URL) wrap
// services.ErrUpstream. The client never retries.
package imagegen
