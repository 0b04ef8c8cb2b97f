// Package registry implements the Record Registry (C2): a case-insensitive
// map from fully-qualified record name to Record, with stable references
// and MT-safe iteration.
//
// add rejects duplicates; once added, a record is never mutated in place
// by the registry itself (the Record's Cell uses atomics internally, and
// Enabled is an atomic bool). Lookups, mutation, and ForEach all serialize
// on a single mutex; ForEach holds it for the duration of the callback, so
// callers must not call back into the registry from inside one.
package registry
