package dbemit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/naming"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/walker"
)

// ListFormat selects one of the listing kinds named in §6's
// tcGenerateList rules (SPEC_FULL.md §4.14). Only the plain and long
// formats are implemented; burt-save-restore and daq-ini are out of the
// stated core scope.
type ListFormat int

const (
	ListPlain ListFormat = iota
	ListLong
)

// ListSink is a walker.Visitor that writes a plain-text listing of every
// visited leaf, sharing C6's naming pipeline with DBSink. It is
// independent of record-database emission: a symbol walk may feed a
// DBSink and one or more ListSinks at once.
type ListSink struct {
	w      *bufio.Writer
	format ListFormat
	naming naming.Options
}

// NewListSink wraps w for writing in the given format.
func NewListSink(w io.Writer, format ListFormat, namingOpts naming.Options) *ListSink {
	return &ListSink{w: bufio.NewWriter(w), format: format, naming: namingOpts}
}

// Visit implements walker.Visitor.
func (s *ListSink) Visit(leaf walker.Leaf) error {
	name := naming.Convert(leaf.Name, s.naming)
	switch s.format {
	case ListLong:
		kind := "composite"
		if !leaf.Composite {
			kind = leaf.Kind.String()
		}
		_, err := fmt.Fprintf(s.w, "%s\tigroup=%d\tioffset=%d\tsize=%d\tkind=%s\n",
			name, leaf.IGroup, leaf.IOffset, leaf.ByteSize, kind)
		return err
	default: // ListPlain
		if leaf.Composite {
			return nil
		}
		_, err := fmt.Fprintln(s.w, name)
		return err
	}
}

// Close flushes any buffered output. It does not close the underlying
// writer; callers own its lifetime.
func (s *ListSink) Close() error { return s.w.Flush() }
