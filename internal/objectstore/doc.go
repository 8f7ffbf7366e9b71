// Package objectstore publishes finished videos and returns their public
// location.
//
// Store is the single capability the pipeline depends on: Put uploads a local
// file under a key and returns a URL. Three backends ship with reelsmith:
//
//   - FileStore copies into `<dir>/<bucket>/<key>` with size and SHA-256
//     verification and serves the object from `<public_base_url>/<bucket>/<key>`
//     (the API server exposes that tree under /objects).
//   - HTTPStore streams an HTTP PUT to `<endpoint>/<bucket>/<key>` with an
//     optional bearer token, for upload proxies and simple upload services.
//     The Location response header wins over the constructed URL when present.
//   - S3Store uploads through the aws-sdk-go-v2 upload manager to AWS S3 or
//     any S3-compatible endpoint (MinIO, R2) with SigV4 signing, and returns
//     the location the uploader reports.
//
// Every failure wraps services.ErrTransfer. New selects a backend from config.
package objectstore
