// Package types defines the shared, dependency-free vocabulary used across
// the tcIoc bridge: typed errors, cell/value kinds, and the small handle
// types that the symbol model, walker, and scanners pass between packages.
//
// Design goals:
//   - Typed errors with stable categories (parse/schema/transport/...) so
//     callers branch on kind rather than message text.
//   - Small, copyable value kinds instead of large interface graphs.
//   - Paranoid bounds checking; never panic on malformed symbol input.
//
// This package has no dependencies beyond the standard library.
package types
