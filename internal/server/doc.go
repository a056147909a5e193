// Package server is the HTTP shell around the media core: routing,
// auth, chat relay, background archiving, and operational endpoints.
// Media semantics live in internal/image; this package only moves
// bytes between the wire and the core and maps error kinds to HTTP
// statuses.
package server
