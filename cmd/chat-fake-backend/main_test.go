// ABOUTME: Tests for flag parsing in the fake backend entry point
// ABOUTME: Only the -fail value has non-trivial syntax

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/coven-chat/internal/fakeapi"
)

func TestParseFailure(t *testing.T) {
	route, status, err := parseFailure("messages=503")
	require.NoError(t, err)
	assert.Equal(t, fakeapi.RouteMessages, route)
	assert.Equal(t, 503, status)

	for _, bad := range []string{"messages", "messages=abc", "messages=200", "messages=600"} {
		_, _, err := parseFailure(bad)
		assert.Error(t, err, bad)
	}
}
