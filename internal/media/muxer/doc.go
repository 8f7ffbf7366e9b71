// Package muxer combines the generated clip and the narration into one MP4
// with ffmpeg.
//
// The video stream is copied untouched, the audio is encoded to AAC, and the
// moov atom is moved to the front (+faststart) so the result streams over
// HTTP. ffmpeg runs through an injectable command runner; its stderr is
// captured, logged at debug level, and its tail is attached to the error on
// failure. Exit code 0 is the only success. Any other exit, a spawn failure,
// or an expired timeout wraps services.ErrSubprocess. There are no retries.
package muxer
