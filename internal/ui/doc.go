// Package ui implements the approval workflows for destructive
// operations: an interactive console prompt and a forced countdown for
// non-interactive runs.
package ui
