// Package infoplane implements the Info Plane (C12): a synthetic PLC
// whose records expose engine state and statistics (§4.10). Each info
// record is registered like a normal record and participates in the
// same read/write/update lifecycle; its "read" is serviced by Sample,
// which samples the engine, writes via Cell.PLCWrite, and transitions
// the cell's validity -- rather than by a transport round-trip, since
// there is no remote side to this PLC.
package infoplane
