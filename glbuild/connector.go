package glbuild

import (
	"fmt"
	"strconv"
)

// Semantic is the hardware category of a connector slot.
type Semantic uint8

const (
	SemanticNone Semantic = iota
	SemanticPosition
	SemanticNormal
	SemanticTangent
	SemanticBinormal
	SemanticColor
	SemanticTexCoord
	SemanticVPos
	numSemantics
)

var semanticNames = [numSemantics]string{
	SemanticNone:     "",
	SemanticPosition: "POSITION",
	SemanticNormal:   "NORMAL",
	SemanticTangent:  "TANGENT",
	SemanticBinormal: "BINORMAL",
	SemanticColor:    "COLOR",
	SemanticTexCoord: "TEXCOORD",
	SemanticVPos:     "VPOS",
}

func (s Semantic) String() string {
	if s >= numSemantics {
		return "Semantic(" + strconv.Itoa(int(s)) + ")"
	}
	return semanticNames[s]
}

// numbered reports whether the semantic is spelled with its slot index.
func (s Semantic) numbered() bool { return s == SemanticColor || s == SemanticTexCoord }

// Connector allocates the registers of a shader stage interface: either the
// vertex stream or the interpolators between vertex and pixel stage.
// Each semantic category has a cursor which only advances. Texture
// coordinate slots are the overflow category and take one slot per matrix
// row, so a float3x3 takes three.
type Connector struct {
	usage Usage
	vars  map[Key]*Var
	order []*Var
	next  [numSemantics]int
}

// NewConnector returns a connector whose elements have the given usage,
// either [UsageVertexInput] or [UsageVarying].
func NewConnector(usage Usage) *Connector {
	if usage != UsageVertexInput && usage != UsageVarying {
		panic("connector usage must be vertex input or varying")
	}
	return &Connector{usage: usage, vars: make(map[Key]*Var)}
}

// Element allocates the next free slots of category sem for the element k.
// Allocating a key twice panics: slots are never reassigned.
func (c *Connector) Element(sem Semantic, k Key, typ Type, arraySize int) *Var {
	if sem == SemanticNone || sem >= numSemantics {
		panic(fmt.Errorf("glbuild: invalid semantic %d for %q", sem, k))
	}
	if old, ok := c.vars[k]; ok {
		panic(fmt.Errorf("glbuild: connector element %q already allocated at %s%d", k, old.Semantic, old.Slot))
	}
	v := &Var{
		Key:       k,
		Type:      typ,
		Usage:     c.usage,
		Semantic:  sem,
		ArraySize: arraySize,
		Slot:      c.next[sem],
	}
	c.next[sem] += v.Slots()
	c.vars[k] = v
	c.order = append(c.order, v)
	return v
}

// Find returns the element allocated for k or nil.
func (c *Connector) Find(k Key) *Var { return c.vars[k] }

// Lookup returns the element allocated for the non-indexed name n or nil.
func (c *Connector) Lookup(n Name) *Var { return c.vars[n.Key()] }

// Elements returns the allocated elements in allocation order.
func (c *Connector) Elements() []*Var { return c.order }

// Slots returns the number of slots allocated in category sem.
func (c *Connector) Slots(sem Semantic) int { return c.next[sem] }

// Usage returns the usage of the connector's elements.
func (c *Connector) Usage() Usage { return c.usage }
