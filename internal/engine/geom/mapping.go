package geom

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Mapping selects how ChangeTextureMapping derives UVs from positions.
type Mapping uint8

const (
	// MappingX projects along X: u from z, v from y.
	MappingX Mapping = iota
	// MappingY projects along Y: u from x, v from z.
	MappingY
	// MappingZ projects along Z: u from x, v from y.
	MappingZ
	// Mapping1X sets only u, from x.
	Mapping1X
	// Mapping1Y sets only v, from y.
	Mapping1Y
	// Mapping1Z sets only u, from z.
	Mapping1Z
)

// ChangeTextureMapping rewrites the primary UVs of the batch found by
// SearchKey as u = a*au + bu, v = b*av + bv, where a and b
// are the position components picked by mode. Single-axis modes use au
// and bu for the one coordinate they write.
func (t *Tree) ChangeTextureMapping(rank int, key Key, mode Mapping, au, bu, av, bv float32) error {
	if mode > Mapping1Z {
		return fmt.Errorf("geom: unknown mapping mode %d", mode)
	}
	b, err := t.searchBatch(rank, key)
	if err != nil {
		return err
	}

	for i := range b.Vertices {
		v := &b.Vertices[i]
		p := v.Pos
		switch mode {
		case MappingX:
			v.UV.X = p.Z*au + bu
			v.UV.Y = p.Y*av + bv
		case MappingY:
			v.UV.X = p.X*au + bu
			v.UV.Y = p.Z*av + bv
		case MappingZ:
			v.UV.X = p.X*au + bu
			v.UV.Y = p.Y*av + bv
		case Mapping1X:
			v.UV.X = p.X*au + bu
		case Mapping1Y:
			v.UV.Y = p.Y*au + bu
		case Mapping1Z:
			v.UV.X = p.Z*au + bu
		}
	}
	return nil
}

// Track describes a caterpillar track texture.
type Track struct {
	// Pos is the travelled distance along the track periphery.
	Pos float32
	// Factor converts world length into periphery length.
	Factor float32
	// Length, Start and Width are texel measures: the repeating link
	// length, the link strip start and the full texture width.
	Length float32
	Start  float32
	Width  float32
}

const (
	trackEpsilon = 0.0001
	trackWrap    = 1000000
)

// TrackTextureMapping scrolls the u coordinate of a track batch built from
// links of two triangles (6 vertices) each, so the texture appears to move
// around the periphery by tr.Pos. The batch must hold at least two links.
func (t *Tree) TrackTextureMapping(rank int, key Key, tr Track) error {
	b, err := t.searchBatch(rank, key)
	if err != nil {
		return err
	}
	pv := b.Vertices
	nb := len(pv)
	if nb < 12 || nb%6 != 0 {
		return fmt.Errorf("%w: track needs whole links of 6, got %d vertices", ErrBadVertexCount, nb)
	}
	if tr.Factor == 0 || tr.Width == 0 {
		return fmt.Errorf("geom: track factor and width must be non-zero")
	}

	pos := tr.Pos
	for pos < 0 {
		pos += trackWrap
	}

	// The shared edge of the first two links is where the periphery walk
	// starts.
	var curX, curY float32
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if pv[i].Pos.X == pv[j+6].Pos.X && pv[i].Pos.Y == pv[j+6].Pos.Y {
				curX, curY = pv[i].Pos.X, pv[i].Pos.Y
				break
			}
		}
	}

	ps := float32(0)
	links := nb / 6
	for l := 0; l < links; l++ {
		link := pv[l*6 : l*6+6]
		var is, ie []int
		for i := range link {
			if math32.Abs(link[i].Pos.X-curX) < trackEpsilon && math32.Abs(link[i].Pos.Y-curY) < trackEpsilon {
				ie = append(ie, i)
			} else {
				is = append(is, i)
			}
		}

		pe := ps
		if len(is) == 3 && len(ie) == 3 {
			pe = ps + math32.Hypot(link[is[0]].Pos.X-link[ie[0]].Pos.X, link[is[0]].Pos.Y-link[ie[0]].Pos.Y)/tr.Factor

			pps := ps + pos
			ppe := pe + pos
			offset := float32(int(pps))
			pps -= offset
			ppe -= offset

			for i := 0; i < 3; i++ {
				link[is[i]].UV.X = (pps*tr.Length + tr.Start) / tr.Width
				link[ie[i]].UV.X = (ppe*tr.Length + tr.Start) / tr.Width
			}
		}

		if l >= links-1 {
			break
		}
		next := pv[(l+1)*6 : (l+1)*6+6]
		for i := range next {
			if math32.Abs(next[i].Pos.X-curX) > trackEpsilon || math32.Abs(next[i].Pos.Y-curY) > trackEpsilon {
				curX, curY = next[i].Pos.X, next[i].Pos.Y
				break
			}
		}
		ps = pe
	}
	return nil
}

func (t *Tree) searchBatch(rank int, key Key) (*Batch, error) {
	id, ok := t.SearchKey(rank, key)
	if !ok {
		return nil, fmt.Errorf("%w: rank %d texture %q", ErrNotFound, rank, key.Texture.Name1)
	}
	b, _ := t.Batch(id)
	return b, nil
}
