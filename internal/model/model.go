// Package model defines data structures for lang-assist.
//
// This package contains:
//   - Note: a saved analysis note and its search result form
//   - GrammarAnalysis: structured token-level breakdown returned by the model
//   - Config: application configuration
//   - JSON-RPC 2.0 and MCP: request/response/error structures
package model
