// Package config resolves and validates the flatisfy configuration.
//
// Precedence (highest to lowest):
//  1. CLI flags (--passes, --max-entries, --port, --host, --data-dir)
//  2. Config file (JSON, path given by --config)
//  3. Built-in defaults
//
// After merging, the data directory defaults to the platform's per-user
// data directory, and the database connection string and search index path
// are derived from it when not set explicitly. The merged result is checked
// against the constraint schema before it is handed to the caller.
//
// Use [Resolve] to obtain a merged and validated [Config], [Validate] to
// check any candidate mapping independently, and [WriteDefault] to emit a
// configuration template for first-time setup.
package config
