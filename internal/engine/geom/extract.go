package geom

import "github.com/Faultbox/midgard-batch/pkg/math"

// Triangles extracts a deterministic subset of the triangles of rank
// under the exact LOD range. Triangle n (counted in traversal order) is
// taken while taken < percent*(n+1), so the same percent always yields
// the same subset spread evenly over the object. At most limit triangles
// are returned; limit <= 0 means no limit.
func (t *Tree) Triangles(rank int, lod LODRange, percent float32, limit int) []Triangle {
	if percent <= 0 {
		return nil
	}
	var out []Triangle
	seen := 0
	var tex TexturePair
	full := false

	t.Walk(Walker{
		Texture: func(tp TexturePair) bool {
			tex = tp
			return true
		},
		Object: func(r int) bool { return r == rank },
		LOD:    func(_ int, l LODRange) bool { return l == lod },
		Batch: func(_ int, _ BatchID, b *Batch) bool {
			b.EachTriangle(func(v0, v1, v2 *Vertex) bool {
				if float32(len(out)) < percent*float32(seen+1) {
					out = append(out, Triangle{
						V:        [3]Vertex{*v0, *v1, *v2},
						Material: b.Material,
						State:    b.State,
						Texture:  tex,
					})
					if limit > 0 && len(out) >= limit {
						full = true
					}
				}
				seen++
				return !full
			})
			return !full
		},
	})
	return out
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min math.Vec3
	Max math.Vec3
}

// Radius returns the bounding radius around the local origin.
func (b Box) Radius() float32 {
	r := b.Min.Length()
	if m := b.Max.Length(); m > r {
		r = m
	}
	return r
}

// extend grows the box to include p.
func (b *Box) extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// BoxOf returns the box of vertices, always including the local origin.
func BoxOf(verts []Vertex) Box {
	var b Box
	for i := range verts {
		b.extend(verts[i].Pos)
	}
	return b
}

// BBox recomputes the object-space box of every LOD of rank. The box
// always contains the local origin. ok is false when rank has no geometry.
func (t *Tree) BBox(rank int) (box Box, ok bool) {
	t.Walk(Walker{
		Object: func(r int) bool { return r == rank },
		Batch: func(_ int, _ BatchID, b *Batch) bool {
			ok = true
			for i := range b.Vertices {
				box.extend(b.Vertices[i].Pos)
			}
			return true
		},
	})
	return box, ok
}

// Bounds recomputes the box of every object in one pass.
func (t *Tree) Bounds() map[int]Box {
	out := make(map[int]Box)
	t.Walk(Walker{
		Batch: func(rank int, _ BatchID, b *Batch) bool {
			box := out[rank]
			for i := range b.Vertices {
				box.extend(b.Vertices[i].Pos)
			}
			out[rank] = box
			return true
		},
	})
	return out
}
