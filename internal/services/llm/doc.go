// Package llm provides an OpenAI-compatible chat completion client used to
// write the narration for a generated clip.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send system/user prompts, receive the trimmed text of the
// first usable choice.
//
// # Response Handling
//
// Content is read from message.content, falling back to the streaming delta
// schema and the legacy "text" field because some compatible providers return
// those even when stream=false. Empty or whitespace-only content is an
// upstream failure that carries the finish reason, any refusal, and a short
// snippet of the raw response.
//
// # Failure Policy
//
// The client issues exactly one request per call. Transport errors, non-2xx
// responses, decode failures, and empty content all wrap services.ErrUpstream.
package llm
