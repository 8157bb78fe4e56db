package table

import (
	"sync"

	"go.uber.org/zap"

	handletable "github.com/wippyai/handle-table"
	"github.com/wippyai/handle-table/errors"
	"github.com/wippyai/handle-table/lockorder"
)

// GrowObserver is notified after every successful growth step. It runs
// with the table lock held in exclusive mode and must not call back into
// the table.
type GrowObserver func(owner any, oldSize, newSize uint32)

// Options configures a Table.
type Options struct {
	// GrowthIncrement is the number of slots added per growth step.
	// Zero selects the default; values above the index ceiling are
	// clamped to it.
	GrowthIncrement uint32

	// MinFreeEntries is the low-water mark: Allocate grows the table
	// before popping a slot whenever the free count is at or below this
	// value. Zero means the table grows only when completely full.
	MinFreeEntries uint32

	// Owner is an opaque accounting tag passed through to OnGrow.
	Owner any

	// OnGrow, when non-nil, observes growth for memory accounting.
	OnGrow GrowObserver

	// LockName and LockRank identify the table's lock to the lockorder
	// registry. Embedders running several tables give each a distinct
	// rank reflecting the order they nest in. Zero values select the
	// defaults.
	LockName string
	LockRank lockorder.Rank
}

// DefaultOptions returns the standard table configuration.
func DefaultOptions() Options {
	return Options{
		GrowthIncrement: 1024,
		MinFreeEntries:  128,
		LockName:        "handletable",
		LockRank:        100,
	}
}

// Stats is a point-in-time snapshot of table occupancy. FreeHead and
// FreeTail are InvalidIndex when the free list is empty.
type Stats struct {
	Size      uint32
	FreeCount uint32
	UsedCount uint32
	FreeHead  uint32
	FreeTail  uint32
}

// Table maps 32-bit handles to caller-owned objects. The zero value is
// not usable; construct with New or NewWithDefaults.
type Table struct {
	entries   []entry
	freeHead  uint32
	freeTail  uint32
	freeCount uint32
	opts      Options
	mu        sync.RWMutex
}

// New creates an empty table with the given options. No slots are
// reserved up front; the first allocation triggers the first growth.
func New(opts Options) *Table {
	def := DefaultOptions()
	if opts.GrowthIncrement == 0 {
		opts.GrowthIncrement = def.GrowthIncrement
	}
	if opts.GrowthIncrement > handletable.IndexMax {
		opts.GrowthIncrement = handletable.IndexMax
	}
	if opts.LockName == "" {
		opts.LockName = def.LockName
	}
	if opts.LockRank == 0 {
		opts.LockRank = def.LockRank
	}
	return &Table{
		freeHead: InvalidIndex,
		freeTail: InvalidIndex,
		opts:     opts,
	}
}

// NewWithDefaults creates an empty table with DefaultOptions.
func NewWithDefaults() *Table {
	return New(DefaultOptions())
}

// Size returns the current capacity in slots.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) Size() uint32 {
	return uint32(len(t.entries))
}

// FreeCount returns the number of slots on the free list.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) FreeCount() uint32 {
	return t.freeCount
}

// Len returns the number of occupied slots, soft-destroyed ones
// included.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) Len() int {
	return int(uint32(len(t.entries)) - t.freeCount)
}

// Stats returns an occupancy snapshot.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) Stats() Stats {
	size := uint32(len(t.entries))
	return Stats{
		Size:      size,
		FreeCount: t.freeCount,
		UsedCount: size - t.freeCount,
		FreeHead:  t.freeHead,
		FreeTail:  t.freeTail,
	}
}

// grow extends the table by at least one increment, or further when
// minSize demands it, splicing the new slots onto the free list tail in
// index order. The entry array is replaced all at once, so a failed
// growth leaves the table untouched. New slots start at generation 1.
func (t *Table) grow(minSize uint32) error {
	oldSize := uint32(len(t.entries))

	// The tail must be the last element of a well-formed list before
	// anything is spliced onto it.
	if t.freeCount != 0 {
		if t.freeTail >= oldSize || t.entries[t.freeTail].state != slotFree {
			err := errors.Corruption(errors.PhaseGrow,
				"free list tail %d invalid (size %d)", t.freeTail, oldSize)
			Logger().Error("handle table corrupted",
				zap.Uint32("tail", t.freeTail),
				zap.Uint32("size", oldSize),
				zap.Error(err))
			return err
		}
		if next := t.entries[t.freeTail].free.next; next != InvalidIndex {
			err := errors.Corruption(errors.PhaseGrow,
				"free list tail %d has successor %d", t.freeTail, next)
			Logger().Error("handle table corrupted",
				zap.Uint32("tail", t.freeTail),
				zap.Uint32("next", next),
				zap.Error(err))
			return err
		}
	}

	target := oldSize + t.opts.GrowthIncrement
	if target < minSize {
		target = minSize
	}
	if target > handletable.IndexMax {
		target = handletable.IndexMax
	}
	if target <= oldSize {
		Logger().Warn("handle table exhausted",
			zap.Uint32("size", oldSize),
			zap.Uint32("limit", handletable.IndexMax))
		return errors.Exhausted(errors.PhaseGrow, oldSize+t.opts.GrowthIncrement, handletable.IndexMax)
	}

	grown := make([]entry, target)
	copy(grown, t.entries)
	prev := t.freeTail
	for i := oldSize; i < target; i++ {
		grown[i] = entry{
			state:      slotFree,
			generation: 1,
			free:       freeLinks{prev: prev, next: i + 1},
		}
		prev = i
	}
	grown[target-1].free.next = InvalidIndex

	if t.freeCount != 0 {
		grown[t.freeTail].free.next = oldSize
	} else {
		t.freeHead = oldSize
	}
	t.freeTail = target - 1
	t.entries = grown
	t.freeCount += target - oldSize

	if t.opts.OnGrow != nil {
		t.opts.OnGrow(t.opts.Owner, oldSize, target)
	}
	Logger().Debug("table grown",
		zap.Uint32("old_size", oldSize),
		zap.Uint32("new_size", target),
		zap.Uint32("free_count", t.freeCount))
	return nil
}
