// Package dbemit is the DB Emitter (C7): a walker.Visitor that turns each
// atomic leaf into a record-database text block (§4.7, §6) and a
// registered Record in the Registry. ListSink implements the same
// Visitor shape for the plain/long listing sinks named in SPEC_FULL.md
// §4.14.
package dbemit
