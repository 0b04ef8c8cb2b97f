package types

import "fmt"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindUsage     ErrKind = iota // malformed command-line / option string
	ErrKindIO                       // symbol file or db-emit file could not be opened
	ErrKindParse                    // malformed symbol-table document
	ErrKindSchema                   // recognized tag in the wrong context, unknown type
	ErrKindAlloc                    // per-record allocation failure (leaf dropped)
	ErrKindTransport                // remote memory server call failed
	ErrKindInvariant                // internal bug; callers may choose to panic
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindUsage:
		return "usage"
	case ErrKindIO:
		return "io"
	case ErrKindParse:
		return "parse"
	case ErrKindSchema:
		return "schema"
	case ErrKindAlloc:
		return "alloc"
	case ErrKindTransport:
		return "transport"
	case ErrKindInvariant:
		return "invariant"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause and, for parse
// errors, the 1-based line at which the problem was detected.
type Error struct {
	Kind ErrKind
	Msg  string
	Line int   // non-zero for ErrKindParse
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := e.Kind.String()
	if e.Line > 0 {
		prefix = fmt.Sprintf("%s:%d", prefix, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewParseError builds a parse error anchored to a document line.
func NewParseError(line int, format string, args ...any) *Error {
	return &Error{Kind: ErrKindParse, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// NewSchemaError builds a schema error describing the offending construct.
func NewSchemaError(what string) *Error {
	return &Error{Kind: ErrKindSchema, Msg: what}
}

// NewInvalidArrayError builds a schema error wrapping ErrInvalidArray with
// context describing which array and why.
func NewInvalidArrayError(what string) *Error {
	return &Error{Kind: ErrKindSchema, Msg: what, Err: ErrInvalidArray}
}

// TransportKind classifies a failed call to the remote memory server.
type TransportKind int

const (
	TransportTimeout TransportKind = iota
	TransportDisconnected
	TransportRefused
	TransportServerState
	TransportOther
)

func (k TransportKind) String() string {
	switch k {
	case TransportTimeout:
		return "timeout"
	case TransportDisconnected:
		return "disconnected"
	case TransportRefused:
		return "refused"
	case TransportServerState:
		return "server-state"
	default:
		return "other"
	}
}

// TransportError wraps a failed transport call with its classification.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport(%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Sentinels commonly returned by the core packages.
var (
	ErrInvalidKindChange = &Error{Kind: ErrKindInvariant, Msg: "cell: kind change after init"}
	ErrSizeMismatch      = &Error{Kind: ErrKindInvariant, Msg: "cell: size mismatch"}
	ErrInvalidArray      = &Error{Kind: ErrKindSchema, Msg: "array element count does not divide bit size"}
	ErrDuplicateRecord   = &Error{Kind: ErrKindInvariant, Msg: "registry: duplicate record name"}
)

// -----------------------------------------------------------------------------
// Value cell kinds
// -----------------------------------------------------------------------------

// CellKind enumerates the atomic storage representations a Value Cell may
// hold. Kind and size are fixed for the lifetime of the cell (§4.1).
type CellKind int

const (
	KindBool CellKind = iota
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindF32
	KindF64
	KindString
	KindWString
	KindBinary
)

func (k CellKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindI8:
		return "i8"
	case KindU8:
		return "u8"
	case KindI16:
		return "i16"
	case KindU16:
		return "u16"
	case KindI32:
		return "i32"
	case KindU32:
		return "u32"
	case KindI64:
		return "i64"
	case KindU64:
		return "u64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindString:
		return "string"
	case KindWString:
		return "wstring"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("CellKind(%d)", int(k))
	}
}

// IsNumeric reports whether the kind is a fixed-width integer or float, i.e.
// a kind for which user_read/plc_read perform a lossy numeric convert.
func (k CellKind) IsNumeric() bool {
	switch k {
	case KindBool, KindI8, KindU8, KindI16, KindU16, KindI32, KindU32, KindI64, KindU64, KindF32, KindF64:
		return true
	default:
		return false
	}
}

// FixedSize returns the on-wire byte size for fixed-width kinds, or 0 for
// string/wstring/binary whose size is supplied at Init time.
func (k CellKind) FixedSize() int {
	switch k {
	case KindBool, KindI8, KindU8:
		return 1
	case KindI16, KindU16:
		return 2
	case KindI32, KindU32, KindF32:
		return 4
	case KindI64, KindU64, KindF64:
		return 8
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Side / access-mode / publish-mode / connection-state enumerations
// -----------------------------------------------------------------------------

// Side identifies one of the two owners of a Value Cell.
type Side int

const (
	SideUser Side = iota
	SidePLC
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideUser {
		return SidePLC
	}
	return SideUser
}

// AccessMode restricts which side of a Record may originate writes.
type AccessMode int

const (
	AccessReadOnly AccessMode = iota
	AccessWriteOnly
	AccessReadWrite
)

// PublishMode is the tri-state publish flag carried by a property list.
type PublishMode int

const (
	PublishInherit PublishMode = iota
	PublishYes
	PublishSilent
)

// ConnState is the atomic connection-state enum shared by a PLC and its
// scanners (§4.9, §4.10).
type ConnState int32

const (
	ConnUnknown ConnState = iota
	ConnInit
	ConnRun
	ConnStop
	ConnError
)

func (c ConnState) String() string {
	switch c {
	case ConnInit:
		return "INIT"
	case ConnRun:
		return "RUN"
	case ConnStop:
		return "STOP"
	case ConnError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// WalkMode controls which leaves the Type-Tree Walker invokes its visitor
// for (§4.5).
type WalkMode int

const (
	WalkAtomicOnly WalkMode = iota
	WalkStructuredOnly
	WalkBoth
)
