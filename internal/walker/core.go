package walker

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plctypes"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/symtab"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// maxDepth stops the walk on a circular type graph (§4.5 step 8).
const maxDepth = 100

// Leaf is one atomic or composite node handed to a Visitor. For a
// composite node (Composite true), Kind and Process are zero and
// meaningless.
type Leaf struct {
	Name       string
	IGroup     uint32
	IOffset    uint32
	ByteSize   int
	Kind       types.CellKind
	Process    plctypes.ProcessType
	Composite  bool
	EnumLabels map[int]string
	Props      symtab.PropertyList
}

// Visitor is invoked once per leaf the walk reaches, in document order.
// Returning an error aborts the walk; the error is returned from Walk
// unchanged.
type Visitor func(Leaf) error

// Mode controls which nodes a Visitor sees.
type Mode = types.WalkMode

// Options configures a single call to Walk.
type Options struct {
	// Prefix is prepended to the root symbol's name, separated by a dot.
	Prefix string
	// ExportAll makes every symbol whose publish flag is "inherit"
	// behave as if it were explicitly marked publish.
	ExportAll bool
	Mode      Mode
	// Logger receives non-fatal diagnostics (depth cap hits). Defaults
	// to slog.Default() when nil.
	Logger *slog.Logger
}

// Walk resolves sym's type graph to atomic (and, per opts.Mode,
// composite) leaves and invokes visit for each one. It returns nil
// without invoking visit at all if sym's effective publish state is
// silent.
func Walk(model *symtab.Model, sym symtab.Symbol, opts Options, visit Visitor) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := sym.Name
	if alias, ok := sym.Props.Get(symtab.PropAlias); ok && alias != "" {
		name = alias
	}
	if opts.Prefix != "" {
		name = opts.Prefix + "." + name
	}

	typeLevel := symtab.PropertyList{}
	if td, ok := resolveType(model, sym.Type); ok && !isImplicitArrayName(td.Name) {
		typeLevel = td.Props
	}
	merged := symtab.Merge(symtab.Merge(symtab.PropertyList{}, typeLevel), sym.Props)

	if !resolvePublish(merged.Publish, opts.ExportAll) {
		return nil
	}

	w := &walker{model: model, opts: opts, visit: visit, logger: logger}
	return w.resolve(sym.Type, symtab.PropertyList{}, sym.Props, name, sym.IGroup, sym.IOffset, sym.ByteSize, 1)
}

// resolvePublish applies the tri-state publish flag, falling back to
// parentEffective (or the global export-all flag at the root) when the
// flag is "inherit".
func resolvePublish(mode types.PublishMode, parentEffective bool) bool {
	switch mode {
	case types.PublishYes:
		return true
	case types.PublishSilent:
		return false
	default:
		return parentEffective
	}
}

type walker struct {
	model  *symtab.Model
	opts   Options
	visit  Visitor
	logger *slog.Logger
}

// resolve walks ref, whose own (symbol- or sub-item-level) property list
// is ownProps, layered over parentMerged (§4.5's inheritance rule: parent
// defaults, then the resolved type's own properties, then ownProps --
// later entries win).
func (w *walker) resolve(ref symtab.TypeRef, parentMerged, ownProps symtab.PropertyList, name string, igroup, ioffset uint32, byteSize int, depth int) error {
	if depth > maxDepth {
		w.logger.Warn("walker: type graph exceeds depth cap, stopping", "name", name, "depth", depth)
		return nil
	}

	if plctypes.IsAtomicKeyword(ref.Name) {
		merged := symtab.Merge(parentMerged, ownProps)
		return w.emitAtomic(ref, merged, name, igroup, ioffset, byteSize)
	}

	td, ok := resolveType(w.model, ref)
	if !ok {
		return types.NewSchemaError(fmt.Sprintf("unresolved type reference %q (decoration %d) for %s", ref.Name, ref.Decoration, name))
	}

	typeLevel := symtab.PropertyList{}
	if !isImplicitArrayName(td.Name) {
		typeLevel = td.Props
	}
	merged := symtab.Merge(symtab.Merge(parentMerged, typeLevel), ownProps)

	switch td.Kind {
	case symtab.KindArray:
		return w.resolveArray(td, merged, name, igroup, ioffset, byteSize, depth)
	case symtab.KindStruct, symtab.KindFunctionBlock:
		return w.resolveStruct(td, merged, name, igroup, ioffset, depth)
	case symtab.KindEnum:
		return w.emitEnum(td, merged, name, igroup, ioffset, byteSize)
	default: // symtab.KindSimple: a transparent alias, recurse into its target
		return w.resolve(td.ElemType, merged, symtab.PropertyList{}, name, igroup, ioffset, byteSize, depth+1)
	}
}

func (w *walker) emitAtomic(ref symtab.TypeRef, props symtab.PropertyList, name string, igroup, ioffset uint32, byteSize int) error {
	if w.opts.Mode == types.WalkStructuredOnly {
		return nil
	}
	process, kind, _ := plctypes.Classify(ref.Name)
	if kind == types.KindString || kind == types.KindWString {
		if n := plctypes.StringLength(ref.Name); n > byteSize {
			byteSize = n
		}
	}
	return w.visit(Leaf{
		Name:     name,
		IGroup:   igroup,
		IOffset:  ioffset,
		ByteSize: byteSize,
		Kind:     kind,
		Process:  process,
		Props:    props,
	})
}

func (w *walker) emitEnum(td *symtab.TypeDef, props symtab.PropertyList, name string, igroup, ioffset uint32, byteSize int) error {
	if w.opts.Mode == types.WalkStructuredOnly {
		return nil
	}
	inRange := len(td.EnumLabels) > 0
	for k := range td.EnumLabels {
		if k < 0 || k > 15 {
			inRange = false
			break
		}
	}
	if !inRange {
		kind, ok := plctypes.IntKindForBitSize(td.BitSize)
		if !ok {
			return types.NewSchemaError(fmt.Sprintf("enum %s: unsupported bit size %d for integer fallback", name, td.BitSize))
		}
		return w.visit(Leaf{
			Name:     name,
			IGroup:   igroup,
			IOffset:  ioffset,
			ByteSize: byteSize,
			Kind:     kind,
			Process:  plctypes.ProcessInteger,
			Props:    props,
		})
	}

	for k, label := range td.EnumLabels {
		props.Set(symtab.PropEnumStateBase+symtab.PropertyCode(k), label)
	}
	kind, ok := plctypes.IntKindForBitSize(td.BitSize)
	if !ok {
		kind = types.KindU16
	}
	return w.visit(Leaf{
		Name:       name,
		IGroup:     igroup,
		IOffset:    ioffset,
		ByteSize:   byteSize,
		Kind:       kind,
		Process:    plctypes.ProcessEnum,
		EnumLabels: td.EnumLabels,
		Props:      props,
	})
}

// resolveArray iterates the leftmost dimension of td, dividing bit-size
// evenly across its elements, and recurses either into the remaining
// dimensions or into the element type (§4.5 step 5).
func (w *walker) resolveArray(td *symtab.TypeDef, props symtab.PropertyList, name string, igroup, ioffset uint32, byteSize int, depth int) error {
	if len(td.Dims) == 0 {
		return types.NewInvalidArrayError(fmt.Sprintf("array type %s has no dimensions", td.Name))
	}
	dim := td.Dims[0]
	if dim.Elements <= 0 {
		return types.NewInvalidArrayError(fmt.Sprintf("array type %s: non-positive element count %d", td.Name, dim.Elements))
	}
	if td.BitSize%dim.Elements != 0 {
		return types.NewInvalidArrayError(fmt.Sprintf("array type %s: bit-size %d not divisible by element count %d", td.Name, td.BitSize, dim.Elements))
	}
	elemBitSize := td.BitSize / dim.Elements
	elemByteSize := elemBitSize / 8
	if elemBitSize%8 != 0 {
		// sub-byte elements (e.g. packed bit arrays) still occupy a
		// whole byte per element once flattened to a leaf.
		elemByteSize = 1
	}

	rest := td.Dims[1:]
	for i := 0; i < dim.Elements; i++ {
		idx := dim.LBound + i
		childName := fmt.Sprintf("%s[%d]", name, idx)
		childOffset := ioffset + uint32(i*elemByteSize)

		if len(rest) > 0 {
			child := &symtab.TypeDef{
				Name:     td.Name,
				Kind:     symtab.KindArray,
				BitSize:  elemBitSize,
				Dims:     rest,
				ElemType: td.ElemType,
			}
			if err := w.resolveArray(child, props, childName, igroup, childOffset, elemByteSize, depth+1); err != nil {
				return err
			}
			continue
		}
		if err := w.resolve(td.ElemType, props, symtab.PropertyList{}, childName, igroup, childOffset, elemByteSize, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// resolveStruct optionally emits a composite leaf for td itself, then
// recurses into each sub-item with its own byte-aligned memory location
// (§4.5 step 6).
func (w *walker) resolveStruct(td *symtab.TypeDef, props symtab.PropertyList, name string, igroup, ioffset uint32, depth int) error {
	if w.opts.Mode != types.WalkAtomicOnly {
		if err := w.visit(Leaf{
			Name:      name,
			IGroup:    igroup,
			IOffset:   ioffset,
			ByteSize:  td.BitSize / 8,
			Composite: true,
			Props:     props,
		}); err != nil {
			return err
		}
	}

	for _, si := range td.SubItems {
		if si.BitOffset%8 != 0 || si.BitSize%8 != 0 {
			return types.NewSchemaError(fmt.Sprintf("%s.%s: sub-item not byte-aligned (bit-offset %d, bit-size %d)", name, si.Name, si.BitOffset, si.BitSize))
		}
		childOffset := ioffset + uint32(si.BitOffset/8)
		childByteSize := si.BitSize / 8
		childName := name + "." + si.Name
		if err := w.resolve(si.Type, props, si.Props, childName, igroup, childOffset, childByteSize, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// resolveType looks up ref against model using the §4.3 fallback rules.
func resolveType(model *symtab.Model, ref symtab.TypeRef) (*symtab.TypeDef, bool) {
	return model.Lookup(ref.Decoration, ref.Name)
}

// isImplicitArrayName reports whether name was synthesized from an
// `ARRAY[...] OF ...` declaration rather than user-declared, per the
// type-level-property exclusion in §4.5.
func isImplicitArrayName(name string) bool {
	return strings.Contains(name, "[")
}
