// Package symtab is the Symbol/Type Model (C3): the in-memory graph the
// streaming parser (internal/tpyparse) builds and the type-tree walker
// (internal/walker) consumes.
//
// Symbols are kept in insertion order because that order drives
// deterministic record-database emission (§4.3). Types are indexed by
// decoration id in a multimap, since several types may legitimately share
// id 0; a lookup that misses by (id, name) falls back to a linear search
// by name, ignoring the namespace segment before the last dot.
package symtab
