// Package api is the HTTP transport to the chat backend.
//
// Two response styles are supported:
//
//   - Get, Post, PostRaw: one complete response, non-2xx returned as *StatusError
//   - Stream: the open *http.Response, whatever its status, for chunked reads
//
// Every request carries the client's cookie jar and, when configured, a
// bearer token. ErrorMessage and MessageFromBody turn failures into the text
// shown to users.
package api
