// Package plc supplies the owner object spec.md §9's redesign note asks
// for in place of the source's global singletons: "a single owner (e.g.
// a top-level Engine constructed by main) that explicitly passes handles
// to scanners". PLC bundles one symbol table's registry, scan-period
// configuration, connection state, and the three scanner goroutines
// (§3, §4.9); Engine owns one or more PLCs and exposes the Go-native
// shape of the §6 shell commands. There is no separate info-plane PLC
// (C12): its records live in the registry of the PLC they describe.
package plc
