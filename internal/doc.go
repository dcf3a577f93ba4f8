// Package internal contains the core implementation packages for keyrun.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the keyrun CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - app: launcher session tying loader, registry, executor, and history together
//   - completion: prefix completion over registered command names
//   - config: settings management with validation
//   - errors: structured launcher errors with codes and recoverability
//   - executor: input resolution, target classification, and process launching
//   - history: launch history persistence backed by SQLite
//   - input: special-token classification for "!"-prefixed lines
//   - loader: commands document parsing for YAML, TOML, and JSON
//   - logging: slog-backed structured logging
//   - registry: case-folded command table and suggestion source
//   - server: localhost control API with a WebSocket event stream
//   - types: shared domain types
//   - version: build metadata
//   - watcher: commands document monitoring with debouncing
//
// # Inter-Package Communication
//
// Packages communicate through well-defined seams:
//
//   - The session owns the registry and is the only writer to it
//   - The executor reads the registry through a narrow lookup interface
//   - The watcher triggers session reloads; a bad document keeps the
//     previous command table
//   - The server translates HTTP and WebSocket traffic into session calls
//     and forwards session events to connected clients
//
// # Security Considerations
//
//   - Config package validates all configuration inputs
//   - Server package binds to localhost and validates browser origins
//   - Executor never passes input through a shell; processes are spawned
//     directly with argument vectors
//
// For detailed documentation, see the individual package documentation.
package internal
