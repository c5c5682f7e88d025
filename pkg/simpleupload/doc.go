// Package simpleupload validates upload requests and issues time-limited
// presigned URLs so clients move file bytes directly to and from object
// storage.
//
// The Service applies Rules (key pattern, MIME allow-list, size ceiling, URL
// TTL) and delegates to a Gateway for presigning and HEAD lookups. Gateway
// implementations for S3-compatible storage and for memory live under
// storage/. The HTTP surface is in api/ and a Go client with an upload state
// machine and a session file list is in client/.
//
// # Error Mapping
//
// Validation failures are *ValidationError (400) and carry the failing
// reason. Every gateway failure is a *GatewayError (500) whose public
// message is a fixed string per operation; the provider's error is logged
// and never returned to the caller. A missing object is therefore reported
// by GetMetadata as a 500, not a 404.
package simpleupload
