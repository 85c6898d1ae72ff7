// Package cli wires together the Cobra command tree for the flatisfy binary.
//
// It defines the root command and its subcommands (config init, config
// show, config validate, version), binds the persistent override flags,
// invokes the configuration resolver, and returns deterministic exit codes.
package cli
