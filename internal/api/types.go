package api

import "reelsmith/internal/content"

const (
	messageGenerated      = "Video generated successfully"
	messageMetadataFailed = "Video generated, but failed to fetch metadata"
	errorGenerationFailed = "Video generation failed."
	errorServer           = "Server error"
	errorUnauthorized     = "Unauthorized"
)

// GenerateResponse is returned after a successful run.
type GenerateResponse struct {
	Message string          `json:"message"`
	Video   *content.Record `json:"video,omitempty"`
}

// ErrorResponse is returned for failed requests. Kind is set for pipeline
// failures (upstream, timeout, subprocess, transfer, persistence, ...).
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status string `json:"status"`
}
