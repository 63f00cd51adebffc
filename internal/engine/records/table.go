package records

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/logger"
	"github.com/Faultbox/midgard-batch/pkg/math"
)

// DefaultCapacity is the standard object slot count.
const DefaultCapacity = 1200

// reserve is the number of slots Remaining keeps back from callers.
const reserve = 2

// Table is the flat object record table. Slots are reused lowest first.
type Table struct {
	records []Record
	// span is one past the highest used rank.
	span    int
	shadows *Shadows
	log     *zap.Logger
}

// NewTable creates a table with capacity object slots and shadowCap shadow
// slots.
func NewTable(capacity, shadowCap int) *Table {
	return &Table{
		records: make([]Record, capacity),
		shadows: newShadows(shadowCap),
		log:     logger.Named("records"),
	}
}

// Capacity returns the number of object slots.
func (t *Table) Capacity() int {
	return len(t.records)
}

// Create claims the lowest free slot and returns its rank. The record
// starts with an identity transform, a bbox on the origin, DrawWorld and
// Detectable set and no shadow.
func (t *Table) Create() (int, error) {
	for i := range t.records {
		if t.records[i].Used {
			continue
		}
		t.records[i] = newRecord()
		if i >= t.span {
			t.span = i + 1
		}
		return i, nil
	}
	t.log.Warn("object table full", zap.Int("capacity", len(t.records)))
	return -1, ErrTableFull
}

// Release frees rank and its shadow slot.
func (t *Table) Release(rank int) error {
	r, err := t.Get(rank)
	if err != nil {
		return err
	}
	if r.Shadow >= 0 {
		t.shadows.release(r.Shadow)
	}
	*r = Record{Shadow: -1}

	t.span = 0
	for i := len(t.records) - 1; i >= 0; i-- {
		if t.records[i].Used {
			t.span = i + 1
			break
		}
	}
	return nil
}

// Flush frees every object and shadow slot.
func (t *Table) Flush() {
	clear(t.records)
	t.span = 0
	t.shadows.flush()
}

// Get returns the record of a used rank. The pointer stays valid for the
// table's lifetime.
func (t *Table) Get(rank int) (*Record, error) {
	if rank < 0 || rank >= len(t.records) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	r := &t.records[rank]
	if !r.Used {
		return nil, fmt.Errorf("%w: %d", ErrUnused, rank)
	}
	return r, nil
}

// Used reports whether rank holds a live object.
func (t *Table) Used(rank int) bool {
	return rank >= 0 && rank < len(t.records) && t.records[rank].Used
}

// Span returns one past the highest used rank; iteration can stop there.
func (t *Table) Span() int {
	return t.span
}

// Remaining returns how many more objects callers may create. Two slots
// past the highest used rank are held back, and slots below it that were
// released are not counted.
func (t *Table) Remaining() int {
	return max(len(t.records)-t.span-reserve, 0)
}

// Each calls fn for every used record in rank order.
func (t *Table) Each(fn func(rank int, r *Record)) {
	for i := 0; i < t.span; i++ {
		if t.records[i].Used {
			fn(i, &t.records[i])
		}
	}
}

// ComputeDistances sets each record's distance from eye to its transform
// origin.
func (t *Table) ComputeDistances(eye math.Vec3) {
	t.Each(func(_ int, r *Record) {
		r.Distance = eye.Distance(r.Transform.Translation())
	})
}

// OverrideDistances sets every non-terrain record to d. Terrain keeps its
// measured distance so that it still pages in by range.
func (t *Table) OverrideDistances(eye math.Vec3, d float32) {
	t.Each(func(_ int, r *Record) {
		if r.Type == TypeTerrain {
			r.Distance = eye.Distance(r.Transform.Translation())
			return
		}
		r.Distance = d
	})
}

// Shadows returns the shadow slot table.
func (t *Table) Shadows() *Shadows {
	return t.shadows
}

// CreateShadow links a shadow slot to rank, reusing the existing one.
func (t *Table) CreateShadow(rank int) (*Shadow, error) {
	r, err := t.Get(rank)
	if err != nil {
		return nil, err
	}
	if r.Shadow >= 0 {
		return t.shadows.at(r.Shadow), nil
	}
	i, err := t.shadows.alloc(rank)
	if err != nil {
		t.log.Warn("shadow table full", zap.Int("rank", rank))
		return nil, err
	}
	r.Shadow = i
	return t.shadows.at(i), nil
}

// DeleteShadow unlinks and frees rank's shadow slot, if any.
func (t *Table) DeleteShadow(rank int) error {
	r, err := t.Get(rank)
	if err != nil {
		return err
	}
	if r.Shadow >= 0 {
		t.shadows.release(r.Shadow)
		r.Shadow = -1
	}
	return nil
}

// Shadow returns the shadow linked to rank.
func (t *Table) Shadow(rank int) (*Shadow, error) {
	r, err := t.Get(rank)
	if err != nil {
		return nil, err
	}
	if r.Shadow < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoShadow, rank)
	}
	return t.shadows.at(r.Shadow), nil
}
