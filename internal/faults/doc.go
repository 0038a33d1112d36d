// Package faults keeps low-level transport and server failures that are not
// tied to a conversation turn, separate from ChatState.Error.
package faults
