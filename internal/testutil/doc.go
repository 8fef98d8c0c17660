// Package testutil provides deterministic helpers for tests: fixed run IDs,
// a manually fired ticker, and a quiet logger.
package testutil
