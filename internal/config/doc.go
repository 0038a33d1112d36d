// Package config handles configuration loading for coven-chat.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Values missing from the file keep their defaults, and a missing
// file is equivalent to an empty one when loaded through LoadOrDefault.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from COVEN_CHAT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/coven/chat.yaml
//  3. ~/.config/coven/chat.yaml
//
// A path ending in .toml is parsed as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	api:
//	  token: "${COVEN_CHAT_TOKEN}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Backend settings:
//
//	api:
//	  base_url: "http://localhost:5000/api"
//	  token: "${COVEN_CHAT_TOKEN}"    # optional bearer token (JWT)
//	  document_id: "handbook"          # optional, conversations to load on start
//
// Send defaults:
//
//	send:
//	  streaming: true
//
// Fault log:
//
//	faults:
//	  max_entries: 50
//	  ttl: "30m"                       # time.ParseDuration syntax, 0 keeps faults forever
//
// Logging:
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text, json
package config
