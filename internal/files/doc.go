// Package files groups the corpus discovery layer:
//
//   - filesystem: a provider abstraction over the OS filesystem with an
//     in-memory implementation for tests
//   - scanner: discovers table sources, derived-object sources and
//     migration steps under a corpus root
package files
