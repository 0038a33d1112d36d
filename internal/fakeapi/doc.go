// Package fakeapi is an in-memory chat backend speaking the same HTTP
// surface as the real one. Replies are generated from the input and
// streamed word by word; any route can be made to fail with a scripted
// status and body.
//
// It backs the package tests of the client and the chat-fake-backend
// command used for manual end-to-end runs.
package fakeapi
