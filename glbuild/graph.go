package glbuild

import "fmt"

// Graph is the language element registry of one shader stage during one
// generation. Features look an element up before creating it so values like
// objTrans are declared once no matter how many features need them.
// Elements are never removed. The zero value is ready to use.
type Graph struct {
	vars  map[Key]*Var
	order []*Var
}

// Find returns the element registered under k or nil.
func (g *Graph) Find(k Key) *Var {
	return g.vars[k]
}

// Lookup returns the element registered under the non-indexed name n or nil.
func (g *Graph) Lookup(n Name) *Var { return g.vars[n.Key()] }

// Add registers v and returns it. It panics if the key is already taken:
// callers must [Graph.Find] first.
func (g *Graph) Add(v *Var) *Var {
	if v.Key.Name == nameUndefined || v.Key.Name >= numNames {
		panic(fmt.Errorf("glbuild: invalid element name %d", v.Key.Name))
	}
	if g.vars == nil {
		g.vars = make(map[Key]*Var)
	}
	if old, ok := g.vars[v.Key]; ok {
		panic(fmt.Errorf("glbuild: element %q already declared as %s", v.Key, old))
	}
	g.vars[v.Key] = v
	g.order = append(g.order, v)
	return v
}

// Elements returns all registered elements in creation order.
func (g *Graph) Elements() []*Var { return g.order }

// AppendUsage appends elements with usage u in creation order to dst.
func (g *Graph) AppendUsage(dst []*Var, u Usage) []*Var {
	for _, v := range g.order {
		if v.Usage == u {
			dst = append(dst, v)
		}
	}
	return dst
}

// Len returns the number of registered elements.
func (g *Graph) Len() int { return len(g.order) }
