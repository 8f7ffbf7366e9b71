// Package runway submits image-to-video jobs to the Runway API and waits for
// them to finish.
//
// Create posts a single image_to_video task; Retrieve reads its current state;
// Await polls Retrieve through internal/poll until the task reaches a terminal
// status. A job is never resubmitted.
//
// Status handling:
//   - PENDING, THROTTLED, RUNNING: keep polling
//   - SUCCEEDED: extract the output reference (Task.VideoURL)
//   - FAILED, CANCELED: services.ErrUpstream immediately
//   - budget exhausted: services.ErrTimeout
//
// Task output arrives in one of three shapes (a bare string, an array whose
// first element is the URL, or an object with a "video" field); VideoURL
// accepts all of them.
package runway
