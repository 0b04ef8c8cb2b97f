// Package naming is Naming & Conversion (C6): it turns a raw dotted PLC
// path plus an optional alias and prefix into the fully-qualified record
// name used as the Registry key, applying a selectable conversion rule,
// case rule, array-index rule, substitution table, and $(token) expansion.
package naming
