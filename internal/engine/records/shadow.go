package records

import (
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// DefaultShadowCapacity is the standard shadow slot count.
const DefaultShadowCapacity = 500

// ShadowKind selects the shadow footprint.
type ShadowKind uint8

const (
	ShadowNormal ShadowKind = iota
	ShadowWorm
)

// Shadow is a ground shadow slot owned by one object.
type Shadow struct {
	Used      bool
	Hidden    bool
	Owner     int
	Kind      ShadowKind
	Pos       math.Vec3
	Normal    math.Vec3
	Angle     float32
	Radius    float32
	Intensity float32
	Height    float32
}

// Shadows is the shadow slot table.
type Shadows struct {
	slots []Shadow
	span  int
}

func newShadows(capacity int) *Shadows {
	return &Shadows{slots: make([]Shadow, capacity)}
}

func (s *Shadows) alloc(owner int) (int, error) {
	for i := range s.slots {
		if s.slots[i].Used {
			continue
		}
		s.slots[i] = Shadow{Used: true, Owner: owner}
		if i >= s.span {
			s.span = i + 1
		}
		return i, nil
	}
	return -1, ErrShadowTableFull
}

func (s *Shadows) release(i int) {
	s.slots[i] = Shadow{Owner: -1}
	s.span = 0
	for j := len(s.slots) - 1; j >= 0; j-- {
		if s.slots[j].Used {
			s.span = j + 1
			break
		}
	}
}

func (s *Shadows) flush() {
	clear(s.slots)
	s.span = 0
}

func (s *Shadows) at(i int) *Shadow {
	return &s.slots[i]
}

// Len returns the number of shadows in use.
func (s *Shadows) Len() int {
	n := 0
	for i := 0; i < s.span; i++ {
		if s.slots[i].Used {
			n++
		}
	}
	return n
}

// Each calls fn for every used, visible shadow.
func (s *Shadows) Each(fn func(*Shadow)) {
	for i := 0; i < s.span; i++ {
		if s.slots[i].Used && !s.slots[i].Hidden {
			fn(&s.slots[i])
		}
	}
}
