package tpyparse

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plctypes"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/symtab"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/pkg/types"
)

// ProjectInfo carries the document-level metadata recognized from
// PlcProjectInfo and CompilerInfo (§4.4).
type ProjectInfo struct {
	PLCAddress      string // "tc://NetId:Port/"
	CompilerVersion string
	RuntimeVersion  string
	CPUFamily       string
}

// Parse streams r, populating and returning a fresh symtab.Model plus any
// document-level ProjectInfo. Any error aborts the parse; no partial
// model is returned.
func Parse(r io.Reader) (*symtab.Model, ProjectInfo, error) {
	dec := xml.NewDecoder(r)
	model := symtab.NewModel()
	var info ProjectInfo

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ProjectInfo{}, parseErr(dec, "xml: %v", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "PlcProjectInfo":
			var aux xmlPlcProjectInfo
			if err := dec.DecodeElement(&aux, &se); err != nil {
				return nil, ProjectInfo{}, parseErr(dec, "PlcProjectInfo: %v", err)
			}
			if aux.RoutingInfo != nil && aux.AdsInfo != nil {
				info.PLCAddress = fmt.Sprintf("tc://%s:%s/", aux.RoutingInfo.NetId, aux.AdsInfo.Port)
			}
		case "CompilerInfo":
			var aux xmlCompilerInfo
			if err := dec.DecodeElement(&aux, &se); err != nil {
				return nil, ProjectInfo{}, parseErr(dec, "CompilerInfo: %v", err)
			}
			info.CompilerVersion = aux.CompilerVersion
			info.RuntimeVersion = aux.TargetRuntime
			info.CPUFamily = aux.CpuFamily
		case "DataType":
			var aux xmlDataType
			if err := dec.DecodeElement(&aux, &se); err != nil {
				return nil, ProjectInfo{}, parseErr(dec, "DataType: %v", err)
			}
			t, err := buildType(aux)
			if err != nil {
				return nil, ProjectInfo{}, err
			}
			model.AddType(t)
		case "Symbol":
			var aux xmlSymbol
			if err := dec.DecodeElement(&aux, &se); err != nil {
				return nil, ProjectInfo{}, parseErr(dec, "Symbol: %v", err)
			}
			sym, err := buildSymbol(aux)
			if err != nil {
				return nil, ProjectInfo{}, err
			}
			model.AddSymbol(sym)
		}
	}

	model.PatchArrayDecorations(plctypes.IsAtomicKeyword)
	return model, info, nil
}

func parseErr(dec *xml.Decoder, format string, args ...any) *types.Error {
	line, _ := dec.InputPos()
	return types.NewParseError(line, format, args...)
}

func buildTypeRef(ref xmlTypeRef) (symtab.TypeRef, error) {
	name := strings.TrimSpace(ref.Name)
	var deco uint64
	if ref.Decoration != "" {
		var err error
		deco, err = strconv.ParseUint(strings.TrimPrefix(ref.Decoration, "0x"), 16, 32)
		if err != nil {
			return symtab.TypeRef{}, types.NewSchemaError("bad Decoration attribute " + ref.Decoration)
		}
	}
	return symtab.TypeRef{
		Name:       name,
		Decoration: uint32(deco),
		Pointer:    ref.Pointer == "1" || strings.EqualFold(ref.Pointer, "true"),
	}, nil
}

func buildProps(p xmlProperties) (symtab.PropertyList, error) {
	var out symtab.PropertyList
	for _, prop := range p.Property {
		name := strings.TrimSpace(prop.Name)
		code, isOpc, ok := symtab.ParsePropertyName(name)
		if !ok {
			continue // unrecognized property name: ignored, not fatal (§4.4)
		}
		if isOpc {
			if prop.Value == "0" {
				out.Publish = types.PublishSilent
			} else {
				out.Publish = types.PublishYes
			}
			continue
		}
		out.Set(code, prop.Value)
	}
	return out, nil
}

func buildSymbol(aux xmlSymbol) (symtab.Symbol, error) {
	ref, err := buildTypeRef(aux.Type)
	if err != nil {
		return symtab.Symbol{}, err
	}
	props, err := buildProps(aux.Properties)
	if err != nil {
		return symtab.Symbol{}, err
	}
	igroup, _ := strconv.ParseUint(aux.IGroup, 10, 32)
	ioffset, _ := strconv.ParseUint(aux.IOffset, 10, 32)
	bitsize, _ := strconv.Atoi(aux.BitSize)

	if ref.Pointer {
		// Pointer-typed symbols are forced read-only at symbol-close time,
		// applied after the symbol's own properties so it cannot be
		// overridden by an inherited access-rights value (§4.4).
		props.Set(symtab.PropAccessRights, "1")
	}

	return symtab.Symbol{
		Name:     strings.TrimSpace(aux.Name),
		Type:     ref,
		IGroup:   uint32(igroup),
		IOffset:  uint32(ioffset),
		ByteSize: bitsize / 8,
		Props:    props,
	}, nil
}

func buildType(aux xmlDataType) (*symtab.TypeDef, error) {
	ref, err := buildTypeRef(aux.Type)
	if err != nil {
		return nil, err
	}
	props, err := buildProps(aux.Properties)
	if err != nil {
		return nil, err
	}
	bitsize, _ := strconv.Atoi(aux.BitSize)

	var deco uint64
	if aux.Name.Decoration != "" {
		deco, _ = strconv.ParseUint(strings.TrimPrefix(aux.Name.Decoration, "0x"), 16, 32)
	}

	t := &symtab.TypeDef{
		Name:       strings.TrimSpace(aux.Name.Name),
		Decoration: uint32(deco),
		BitSize:    bitsize,
		Props:      props,
	}

	switch {
	case len(aux.ArrayInfo) > 0:
		t.Kind = symtab.KindArray
		t.Dims = make([]symtab.ArrayDim, len(aux.ArrayInfo))
		for i, ai := range aux.ArrayInfo {
			lb, _ := strconv.Atoi(ai.LBound)
			n, _ := strconv.Atoi(ai.Elements)
			t.Dims[i] = symtab.ArrayDim{LBound: lb, Elements: n}
		}
		t.ElemType = ref
	case len(aux.EnumInfo) > 0:
		t.Kind = symtab.KindEnum
		labels := make(map[int]string, len(aux.EnumInfo))
		for _, e := range aux.EnumInfo {
			v, err := strconv.Atoi(strings.TrimSpace(e.Enum))
			if err != nil {
				return nil, types.NewSchemaError("enum " + t.Name + ": bad Enum value " + e.Enum)
			}
			labels[v] = strings.TrimSpace(e.Text)
		}
		t.EnumLabels = labels
	case aux.FbInfo != nil || len(aux.SubItem) > 0:
		if aux.FbInfo != nil {
			t.Kind = symtab.KindFunctionBlock
		} else {
			t.Kind = symtab.KindStruct
		}
		t.SubItems = make([]symtab.SubItem, 0, len(aux.SubItem))
		for _, si := range aux.SubItem {
			siRef, err := buildTypeRef(si.Type)
			if err != nil {
				return nil, err
			}
			siProps, err := buildProps(si.Properties)
			if err != nil {
				return nil, err
			}
			bitOffs, _ := strconv.Atoi(si.BitOffs)
			siBitSize, _ := strconv.Atoi(si.BitSize)
			t.SubItems = append(t.SubItems, symtab.SubItem{
				Name:      strings.TrimSpace(si.Name),
				Type:      siRef,
				BitOffset: bitOffs,
				BitSize:   siBitSize,
				Props:     siProps,
			})
		}
	default:
		t.Kind = symtab.KindSimple
		t.ElemType = ref
	}

	return t, nil
}
