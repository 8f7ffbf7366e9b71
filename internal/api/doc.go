// Package api exposes the HTTP trigger and listing surface.
//
// # Routes
//
//	GET  /api/videos    content records, newest first
//	GET  /api/generate  run the pipeline synchronously (POST accepted too)
//	GET  /healthz       liveness
//	GET  /metrics       Prometheus exposition (when metrics are wired)
//	GET  /objects/...   published reels (file storage backend only)
//
// Every /api route answers CORS preflight requests with 200 and carries the
// configured Access-Control-Allow-Origin header. When a JWT secret is set,
// /api/generate requires an HS256 bearer token.
//
// # Design Notes
//
// A generation request runs on the server lifetime context rather than the
// request context: a client that disconnects does not abort a run in
// progress, but server shutdown does. The server write timeout is therefore
// disabled.
//
// Response bodies keep camelCase record fields (id, title, description,
// videoUrl, createdAt) because existing dashboards read them directly.
package api
