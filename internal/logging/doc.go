// Package logging provides concrete implementations of the
// pgplan.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes formatted messages to a writer (stderr by default)
//   - NullLogger: discards all messages (useful for testing)
//
// All implementations are safe for concurrent use.
package logging
