package symtab

import "strings"

// TypeKind classifies a TypeDef's payload shape (§3).
type TypeKind int

const (
	KindSimple TypeKind = iota
	KindArray
	KindEnum
	KindStruct
	KindFunctionBlock
)

// TypeRef names a referenced type: its declared name, an optional
// decoration id (0 if absent/ambiguous), and whether the reference is a
// pointer (forced read-only at symbol close, per §4.4).
type TypeRef struct {
	Name       string
	Decoration uint32
	Pointer    bool
}

// ArrayDim is one dimension of an array type: (lower-bound, element-count).
type ArrayDim struct {
	LBound   int
	Elements int
}

// SubItem is one member of a structure or function-block type.
type SubItem struct {
	Name      string
	Type      TypeRef
	BitOffset int
	BitSize   int
	Props     PropertyList
}

// TypeDef is a named, decorated type record (§3). Only the fields
// relevant to Kind are meaningful.
type TypeDef struct {
	Name       string
	Decoration uint32
	Kind       TypeKind
	BitSize    int

	Dims       []ArrayDim      // KindArray
	ElemType   TypeRef         // KindArray (element type) / KindSimple (aliased type)
	EnumLabels map[int]string  // KindEnum: ordinal -> label
	SubItems   []SubItem       // KindStruct / KindFunctionBlock

	Props PropertyList
}

// Symbol is a fully-qualified PLC variable: a type reference, a memory
// location triple, and a property list (§3).
type Symbol struct {
	Name     string
	Type     TypeRef
	IGroup   uint32
	IOffset  uint32
	ByteSize int
	Props    PropertyList
}

// Model is the frozen symbol+type graph built by the streaming parser and
// consumed by the walker (§4.3).
type Model struct {
	Symbols []Symbol

	byDecoration map[uint32][]*TypeDef
	byName       map[string][]*TypeDef // all types sharing a bare name, for the id=0 fallback
	allTypes     []*TypeDef
}

// NewModel returns an empty, ready-to-populate model.
func NewModel() *Model {
	return &Model{
		byDecoration: make(map[uint32][]*TypeDef),
		byName:       make(map[string][]*TypeDef),
	}
}

// AddSymbol appends sym, preserving document order.
func (m *Model) AddSymbol(sym Symbol) {
	m.Symbols = append(m.Symbols, sym)
}

// AddType registers t, indexing it by decoration id and by bare name.
func (m *Model) AddType(t *TypeDef) {
	m.allTypes = append(m.allTypes, t)
	m.byDecoration[t.Decoration] = append(m.byDecoration[t.Decoration], t)
	bare := bareName(t.Name)
	m.byName[bare] = append(m.byName[bare], t)
}

// AllTypes returns every registered type, in registration order.
func (m *Model) AllTypes() []*TypeDef { return m.allTypes }

// bareName strips the namespace prefix up to and including the last dot,
// so "A.B.Foo" and "X.Foo" both fold to "Foo" (§4.3).
func bareName(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// Lookup resolves a type reference by (decoration, name). A non-zero
// decoration is matched exactly against the multimap; decoration 0 (or a
// miss) falls back to a linear search by bare name (§4.3).
func (m *Model) Lookup(decoration uint32, name string) (*TypeDef, bool) {
	if decoration != 0 {
		for _, t := range m.byDecoration[decoration] {
			if t.Name == name {
				return t, true
			}
		}
	}
	candidates := m.byName[bareName(name)]
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// PatchArrayDecorations implements the §4.3 post-pass: for every array
// type whose element reference has decoration 0 and whose element type name is not an
// atomic keyword, resolve the element type by name and copy its
// decoration id onto the element reference.
func (m *Model) PatchArrayDecorations(isAtomicKeyword func(string) bool) {
	for _, t := range m.allTypes {
		if t.Kind != KindArray || t.ElemType.Decoration != 0 {
			continue
		}
		if isAtomicKeyword(t.ElemType.Name) {
			continue
		}
		if elem, ok := m.Lookup(0, t.ElemType.Name); ok {
			t.ElemType.Decoration = elem.Decoration
		}
	}
}
