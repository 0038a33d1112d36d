// Package auth handles the bearer tokens sent with backend requests.
//
// Tokens are HS256 JWTs. The chat client never holds the signing secret, so
// it only inspects a token (Inspect) to warn about expiry before sending. The
// fake backend holds the secret and verifies tokens with RequireBearer.
package auth
