package glbuild

import (
	"fmt"
	"strconv"
)

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StagePixel
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	}
	return "Stage(" + strconv.Itoa(int(s)) + ")"
}

// Scope is where an element is being printed.
type Scope struct {
	Syntax *Syntax
	Stage  Stage
}

// Element is a fragment of shader source. Statements are built out of
// elements and flattened into text only once generation has finished, so an
// element may be printed long after it was created.
type Element interface {
	AppendElement(b []byte, scope Scope) []byte
}

// Usage is the storage class of a [Var].
type Usage uint8

const (
	UsageLocal Usage = iota
	UsageUniform
	UsageSampler
	UsageVertexInput
	UsageVarying
)

func (u Usage) String() string {
	switch u {
	case UsageLocal:
		return "local"
	case UsageUniform:
		return "uniform"
	case UsageSampler:
		return "sampler"
	case UsageVertexInput:
		return "vertex input"
	case UsageVarying:
		return "varying"
	}
	return "Usage(" + strconv.Itoa(int(u)) + ")"
}

// ConstSort orders uniform declarations by how often their value changes.
type ConstSort uint8

const (
	SortPrimitive ConstSort = iota
	SortPotentialPrimitive
	SortPass
)

// Var is a named, typed language element.
type Var struct {
	Key   Key
	Type  Type
	Usage Usage
	// Sort is the uniform declaration order class.
	Sort ConstSort
	// ArraySize is zero for non-array elements.
	ArraySize int
	// Semantic is the connector category for inputs and varyings.
	Semantic Semantic
	// Slot is the first connector slot of inputs and varyings and the
	// texture unit of samplers.
	Slot int
}

// Slots returns the number of connector slots the element occupies:
// one per matrix row per array element.
func (v *Var) Slots() int {
	return v.Type.Rows() * max(v.ArraySize, 1)
}

// Ident returns the bare identifier of v.
func (v *Var) Ident() string { return v.Key.String() }

// AppendElement appends a reference to v as seen from scope.
func (v *Var) AppendElement(b []byte, scope Scope) []byte {
	return scope.Syntax.appendRef(b, v, scope.Stage)
}

func (v *Var) String() string {
	return fmt.Sprintf("%s %s (%s)", v.Type, v.Key, v.Usage)
}

// Decl returns an element declaring the local v, i.e. "float4 col".
func Decl(v *Var) Element { return decl{v} }

type decl struct{ v *Var }

func (d decl) AppendElement(b []byte, scope Scope) []byte {
	return scope.Syntax.appendDecl(b, d.v)
}

// Raw is literal shader text.
type Raw string

func (r Raw) AppendElement(b []byte, _ Scope) []byte { return append(b, r...) }

// MultiLine is an ordered list of statements flattened in order.
type MultiLine []Element

// Add appends e to the statement list. Empty elements are ignored.
func (ml *MultiLine) Add(e Element) {
	if !IsEmpty(e) {
		*ml = append(*ml, e)
	}
}

// IsEmpty reports whether e prints nothing: a nil interface, a nil *Var or
// *Op, or a MultiLine of empty elements.
func IsEmpty(e Element) bool {
	switch e := e.(type) {
	case nil:
		return true
	case *Var:
		return e == nil
	case *Op:
		return e == nil
	case MultiLine:
		for _, sub := range e {
			if !IsEmpty(sub) {
				return false
			}
		}
		return true
	}
	return false
}

func (ml MultiLine) AppendElement(b []byte, scope Scope) []byte {
	for _, e := range ml {
		b = e.AppendElement(b, scope)
	}
	return b
}

// ByLang selects an element by target language at print time.
func ByLang(glsl, hlsl Element) Element { return langSwitch{glsl, hlsl} }

type langSwitch [2]Element

func (ls langSwitch) AppendElement(b []byte, scope Scope) []byte {
	e := ls[0]
	if scope.Syntax.Lang == HLSL {
		e = ls[1]
	}
	if e == nil {
		return b
	}
	return e.AppendElement(b, scope)
}

// Op is a templated expression or statement. In the template '@' is
// replaced by the next argument and "$word" by the target language's
// spelling of word (see [Syntax.Word]), i.e. "$lerp" prints "mix" in GLSL.
type Op struct {
	tmpl string
	args []Element
}

// NewOp returns a templated element. It panics if the number of '@'
// placeholders does not match len(args) or the template uses an unknown word.
func NewOp(tmpl string, args ...Element) *Op {
	n := 0
	for i := 0; i < len(tmpl); i++ {
		switch tmpl[i] {
		case '@':
			n++
		case '$':
			w := wordAt(tmpl, i+1)
			if _, ok := glslSyntax.words[w]; !ok {
				panic(fmt.Errorf("glbuild: unknown word %q in template %q", w, tmpl))
			}
			i += len(w)
		}
	}
	if n != len(args) {
		panic(fmt.Errorf("glbuild: template %q wants %d arguments, got %d", tmpl, n, len(args)))
	}
	for i, arg := range args {
		if arg == nil {
			panic(fmt.Errorf("glbuild: template %q argument %d is nil", tmpl, i))
		}
	}
	return &Op{tmpl: tmpl, args: args}
}

// Stmt returns a statement indented one level and terminated by a newline.
func Stmt(tmpl string, args ...Element) *Op {
	return NewOp("   "+tmpl+"\n", args...)
}

func (op *Op) AppendElement(b []byte, scope Scope) []byte {
	arg := 0
	tmpl := op.tmpl
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '@':
			b = op.args[arg].AppendElement(b, scope)
			arg++
		case '$':
			w := wordAt(tmpl, i+1)
			b = append(b, scope.Syntax.words[w]...)
			i += len(w)
		default:
			b = append(b, c)
		}
	}
	return b
}

func wordAt(s string, start int) string {
	end := start
	for end < len(s) && isIdentChar(s[end]) {
		end++
	}
	return s[start:end]
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
