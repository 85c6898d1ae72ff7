// Flatisfy is a flat-hunting tool that fetches housing listings and filters
// them against configurable constraints.
//
// This binary manages the configuration lifecycle: it layers built-in
// defaults, an optional JSON config file, and command-line overrides,
// derives dependent paths, and validates the result before anything else
// runs.
//
// Usage:
//
//	flatisfy config init                  # print a default configuration template
//	flatisfy config init -o config.json   # write the template to a file
//	flatisfy config show --config config.json --port 9999
//	flatisfy config validate --config config.json
//
// See https://framagit.org/bagage/Flatisfy for full documentation.
package main
