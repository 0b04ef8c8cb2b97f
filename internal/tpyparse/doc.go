// Package tpyparse is the Streaming Parser (C4): it consumes a
// type-decorated symbol-table XML document and populates a symtab.Model.
//
// The decoder walks the document with a single forward-only token stream
// (encoding/xml's pull-style Decoder) and only ever buffers one Symbol or
// DataType subtree at a time via DecodeElement -- the full document is
// never materialized as a tree, and parsing never suspends except on
// input, matching the single-threaded synchronous scheduling model of
// §4.4. Malformed XML aborts the whole parse with a *types.Error carrying
// the offending line; an unparsable Decoration attribute on a type
// reference, or an unparsable enum value, aborts it with a schema error.
// Other numeric fields (including a data type's own Decoration) that do
// not parse are read as 0. No partial model is exposed to later stages.
package tpyparse
