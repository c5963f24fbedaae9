package poly

import (
	"fmt"

	"github.com/chazu/brep/pkg/kernel"
)

// MakeCompound returns a new, empty compound.
func (k *Kernel) MakeCompound() kernel.Shape {
	return wrap(newNode(kernel.KindCompound))
}

// MakeCompSolid returns a new, empty compsolid.
func (k *Kernel) MakeCompSolid() kernel.Shape {
	return wrap(newNode(kernel.KindCompoundSolid))
}

// Add appends child to compound by reference. It panics when compound is
// not an aggregate or when child already contains compound, since either
// would corrupt the topology graph.
func (k *Kernel) Add(compound, child kernel.Shape) {
	c := unwrap(compound)
	ch := unwrap(child)
	if !c.kind.IsAggregate() {
		panic(fmt.Sprintf("poly: cannot add to a %s", c.kind))
	}
	if reaches(ch, c) {
		panic(fmt.Sprintf("poly: adding %s %s to compound %s creates a cycle", ch.kind, ch.id, c.id))
	}
	c.children = append(c.children, ch)
}

// reaches reports whether target is from or lies below it. Each node is
// explored once.
func reaches(from, target *tshape) bool {
	found := false
	walkUnique(from, func(n *tshape) {
		if n == target {
			found = true
		}
	})
	return found
}

// Children returns the direct children of s. The returned shapes are the
// kernel-resident children themselves, not copies.
func (k *Kernel) Children(s kernel.Shape) []kernel.Shape {
	t := unwrap(s)
	out := make([]kernel.Shape, len(t.children))
	for i, c := range t.children {
		out[i] = wrap(c)
	}
	return out
}
