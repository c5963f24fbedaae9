package poly

import (
	"github.com/chazu/brep/pkg/kernel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Copy duplicates the topology below s. Sharing inside the copied graph is
// preserved: a vertex used by two faces of the source is used by the two
// corresponding faces of the copy. With opts.Geometry unset, vertices (the
// only geometric data) are shared with the source instead of duplicated.
// Cached meshes are duplicated only when opts.Mesh is set.
func (k *Kernel) Copy(s kernel.Shape, opts kernel.CopyOptions) (kernel.Shape, error) {
	if s == nil {
		return nil, errors.Wrap(ErrNoArguments, "copy: nil shape")
	}
	memo := make(map[*tshape]*tshape)
	return wrap(copyNode(unwrap(s), opts, memo)), nil
}

func copyNode(t *tshape, opts kernel.CopyOptions, memo map[*tshape]*tshape) *tshape {
	if c, ok := memo[t]; ok {
		return c
	}
	if t.kind == kernel.KindVertex && !opts.Geometry {
		memo[t] = t
		return t
	}
	c := &tshape{
		id:    uuid.New(),
		kind:  t.kind,
		point: t.point,
	}
	if opts.Mesh {
		c.mesh = t.mesh.Clone()
		c.meshGen = t.meshGen
	}
	memo[t] = c
	if len(t.children) > 0 {
		c.children = make([]*tshape, len(t.children))
		for i, ch := range t.children {
			c.children[i] = copyNode(ch, opts, memo)
		}
	}
	return c
}
