// Package driving declares the entry points of the core. The CLI, the
// TUI, and the MCP server all reach the application through these
// interfaces; the services package implements them.
package driving
