// Package cli implements the depinfo command-line interface.
//
// depinfo prints the module graph of a program together with the npm
// packages it resolved to, either as a text tree or as augmented JSON. It
// can also export the graph as Graphviz DOT or SVG and serve reports over
// HTTP.
//
// # Commands
//
//   - info: Print the dependency tree or the augmented JSON document
//   - dot: Export module and package edges as DOT or SVG
//   - serve: Answer report requests over HTTP
//   - cache: Manage the package size cache
//   - config: Show the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in the command context; library packages report through
// observability hooks that this package backs with the same logger.
package cli
