// Package cli implements the sensdash command line.
//
//	sensdash                   - live dashboard (plain output when not a terminal)
//	sensdash list [pattern]    - sensors that can be watched
//	sensdash config init       - write a config file
//	sensdash config add-watch  - append a watch to the config file
//	sensdash version           - build information
//	sensdash completion <sh>   - shell completion script
//
// Commands load configuration through internal/config and report failures
// as structured errors from internal/errors, which Execute prints before
// exiting non-zero.
package cli
