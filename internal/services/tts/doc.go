// Package tts narrates text through an OpenAI-compatible speech endpoint.
//
// Client.Synthesize posts {model, input, voice, response_format} to
// `<base_url>/audio/speech` and streams the audio body into a local file
// atomically. A non-2xx response or an empty body wraps services.ErrUpstream;
// a local write failure wraps services.ErrTransfer.
package tts
