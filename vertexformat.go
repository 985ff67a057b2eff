package gshader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soypat/gshader/glbuild"
)

// VertexSemantic is the meaning of a vertex stream element.
type VertexSemantic uint8

const (
	VertexPosition VertexSemantic = iota + 1
	VertexNormal
	VertexTangent
	VertexBinormal
	VertexColor
	VertexTexCoord
	// VertexTangentW is the tangent handedness sign.
	VertexTangentW
	// VertexTangentZ is the terrain tangent z component.
	VertexTangentZ
	// VertexImposterParams holds the imposter half size scale in x and
	// the fade in y.
	VertexImposterParams
	VertexImposterUpVec
	VertexImposterRightVec
)

var vertexSemanticNames = map[VertexSemantic]string{
	VertexPosition: "position",
	VertexNormal:   "normal",
	VertexTangent:  "tangent",
	VertexBinormal: "binormal",
	VertexColor:    "color",
	VertexTexCoord: "texcoord",
	VertexTangentW: "tangentw",
	VertexTangentZ: "tangentz",

	VertexImposterParams:   "imposterparams",
	VertexImposterUpVec:    "imposterupvec",
	VertexImposterRightVec: "imposterrightvec",
}

func (vs VertexSemantic) String() string {
	if s, ok := vertexSemanticNames[vs]; ok {
		return s
	}
	return "VertexSemantic(" + strconv.Itoa(int(vs)) + ")"
}

// VertexElement is one element of a vertex stream.
type VertexElement struct {
	Semantic VertexSemantic
	// Index is the texture coordinate set of texcoord elements.
	Index int
	Type  glbuild.Type
}

// VertexFormat is the ordered layout of the vertex stream.
type VertexFormat struct {
	Elements []VertexElement
}

// Add appends an element.
func (vf *VertexFormat) Add(sem VertexSemantic, idx int, typ glbuild.Type) {
	vf.Elements = append(vf.Elements, VertexElement{Semantic: sem, Index: idx, Type: typ})
}

// Has reports whether the format has an element with the semantic.
func (vf VertexFormat) Has(sem VertexSemantic) bool {
	for _, e := range vf.Elements {
		if e.Semantic == sem {
			return true
		}
	}
	return false
}

// ParseVertexElement parses "semantic[index]:type", i.e. "position:float3"
// or "texcoord1:float2".
func ParseVertexElement(s string) (VertexElement, error) {
	name, typename, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return VertexElement{}, fmt.Errorf("vertex element %q missing type", s)
	}
	var e VertexElement
	for sem, semName := range vertexSemanticNames {
		rest, found := strings.CutPrefix(strings.ToLower(name), semName)
		if !found || sem == VertexTangent && strings.HasPrefix(rest, "w") || sem == VertexTangent && strings.HasPrefix(rest, "z") {
			continue
		}
		e.Semantic = sem
		if rest != "" {
			idx, err := strconv.Atoi(rest)
			if err != nil || idx < 0 {
				return VertexElement{}, fmt.Errorf("vertex element %q: bad index %q", s, rest)
			}
			e.Index = idx
		}
		break
	}
	if e.Semantic == 0 {
		return VertexElement{}, fmt.Errorf("vertex element %q: unknown semantic", s)
	}
	switch strings.ToLower(typename) {
	case "float":
		e.Type = glbuild.Float
	case "float2":
		e.Type = glbuild.Float2
	case "float3":
		e.Type = glbuild.Float3
	case "float4", "color":
		e.Type = glbuild.Float4
	default:
		return VertexElement{}, fmt.Errorf("vertex element %q: unsupported type %q", s, typename)
	}
	return e, nil
}

// key returns the input element name and connector category.
func (e VertexElement) key() (glbuild.Key, glbuild.Semantic) {
	switch e.Semantic {
	case VertexPosition:
		return glbuild.InPosition.Key(), glbuild.SemanticPosition
	case VertexNormal:
		return glbuild.InNormal.Key(), glbuild.SemanticNormal
	case VertexTangent:
		return glbuild.InTangent.Key(), glbuild.SemanticTangent
	case VertexBinormal:
		return glbuild.InBinormal.Key(), glbuild.SemanticBinormal
	case VertexColor:
		return glbuild.InColor.Key(), glbuild.SemanticColor
	case VertexTangentW:
		return glbuild.TcTangentW.Key(), glbuild.SemanticTexCoord
	case VertexTangentZ:
		return glbuild.TcTangentZ.Key(), glbuild.SemanticTexCoord
	case VertexImposterParams:
		return glbuild.TcImposterParams.Key(), glbuild.SemanticTexCoord
	case VertexImposterUpVec:
		return glbuild.TcImposterUpVec.Key(), glbuild.SemanticTexCoord
	case VertexImposterRightVec:
		return glbuild.TcImposterRightVec.Key(), glbuild.SemanticTexCoord
	}
	return glbuild.VertTexCoord.At(e.Index), glbuild.SemanticTexCoord
}

// InstanceElement is a per instance value read from the vertex stream.
type InstanceElement struct {
	Name string
	Type glbuild.Type
	// Slot is the texture coordinate register the element is bound to.
	Slot int
}

// InstancingFormat is the layout of per instance data. It is filled during
// generation when instancing is active.
type InstancingFormat struct {
	Elements []InstanceElement
}

// Add appends an element.
func (f *InstancingFormat) Add(name string, typ glbuild.Type, slot int) {
	f.Elements = append(f.Elements, InstanceElement{Name: name, Type: typ, Slot: slot})
}
