package table

import (
	"go.uber.org/zap"

	handletable "github.com/wippyai/handle-table"
	"github.com/wippyai/handle-table/errors"
)

// Allocate pops a slot from the free-list head, stores the object, and
// returns the slot's handle. A recycled slot keeps the generation it was
// given when last freed, so the returned handle never collides with
// handles from the slot's earlier lives. With makeValid false the entry
// starts soft-destroyed and stays invisible to lookups until
// UnmarkDestroyed.
//
// The caller must hold the table lock in exclusive mode.
func (t *Table) Allocate(object any, typ handletable.Type, makeValid bool) (handletable.Handle, error) {
	if typ == handletable.TypeAny {
		return 0, errors.InvalidInput(errors.PhaseAlloc, "cannot allocate with the wildcard type")
	}

	// Grow ahead of demand so the free list never runs dry under a
	// burst of allocations.
	if t.freeCount <= t.opts.MinFreeEntries {
		if err := t.grow(0); err != nil {
			return 0, err
		}
	}

	size := uint32(len(t.entries))
	head := t.freeHead
	if head >= size {
		err := errors.Corruption(errors.PhaseAlloc,
			"free list head %d out of bounds (size %d)", head, size)
		Logger().Error("handle table corrupted",
			zap.Uint32("head", head),
			zap.Uint32("size", size),
			zap.Error(err))
		return 0, err
	}

	e := &t.entries[head]
	if e.state != slotFree {
		err := errors.Corruption(errors.PhaseAlloc, "free list head %d is not free", head)
		Logger().Error("handle table corrupted",
			zap.Uint32("head", head),
			zap.Error(err))
		return 0, err
	}

	next := e.free.next
	if next == InvalidIndex {
		// Popping the sole free slot empties the list.
		t.freeHead = InvalidIndex
		t.freeTail = InvalidIndex
	} else {
		if next >= size {
			err := errors.Corruption(errors.PhaseAlloc,
				"free list head %d has successor %d out of bounds (size %d)", head, next, size)
			Logger().Error("handle table corrupted",
				zap.Uint32("head", head),
				zap.Uint32("next", next),
				zap.Uint32("size", size),
				zap.Error(err))
			return 0, err
		}
		t.entries[next].free.prev = InvalidIndex
		t.freeHead = next
	}

	e.toOccupied(object, typ, !makeValid)
	t.freeCount--

	return handletable.NewHandle(head, e.generation, e.occ.instance), nil
}

// Assign places an object at the exact slot named by h instead of one of
// the allocator's choosing, growing the table when the index lies beyond
// the current size. The handle's generation is stored as supplied and
// not bumped, so handles minted elsewhere keep resolving unchanged. The
// target slot must be free.
//
// The caller must hold the table lock in exclusive mode.
func (t *Table) Assign(object any, typ handletable.Type, h handletable.Handle) error {
	if typ == handletable.TypeAny {
		return errors.InvalidInput(errors.PhaseAssign, "cannot assign with the wildcard type")
	}
	if h.Generation() == 0 {
		return errors.New(errors.PhaseAssign, errors.KindInvalidInput).
			Handle(h).
			Detail("generation 0 is reserved").
			Build()
	}
	index := h.Index()
	if index >= handletable.IndexMax {
		return errors.New(errors.PhaseAssign, errors.KindInvalidInput).
			Handle(h).
			Detail("index %d is out of range", index).
			Build()
	}

	if index >= uint32(len(t.entries)) {
		if err := t.grow(index + t.opts.GrowthIncrement); err != nil {
			return err
		}
	}

	e := &t.entries[index]
	if e.state != slotFree {
		Logger().Debug("assign target is busy",
			zap.Stringer("handle", h),
			zap.Uint32("index", index),
			zap.Uint8("type", uint8(e.occ.typ)))
		return errors.Busy(errors.PhaseAssign, h, e.occ.typ)
	}

	// Validate both neighbor links before touching either, so a
	// corrupt list aborts the assignment with the table unmodified.
	size := uint32(len(t.entries))
	if index != t.freeTail && e.free.next >= size {
		err := errors.Corruption(errors.PhaseAssign,
			"entry %d has successor %d out of bounds (size %d)", index, e.free.next, size)
		Logger().Error("handle table corrupted",
			zap.Uint32("index", index),
			zap.Uint32("next", e.free.next),
			zap.Uint32("size", size),
			zap.Error(err))
		return err
	}
	if index != t.freeHead && e.free.prev >= size {
		err := errors.Corruption(errors.PhaseAssign,
			"entry %d has predecessor %d out of bounds (size %d)", index, e.free.prev, size)
		Logger().Error("handle table corrupted",
			zap.Uint32("index", index),
			zap.Uint32("prev", e.free.prev),
			zap.Uint32("size", size),
			zap.Error(err))
		return err
	}

	// Unlink from the free list: tail side, then head side. A slot
	// that is both head and tail empties the list.
	if index != t.freeTail {
		t.entries[e.free.next].free.prev = e.free.prev
	} else {
		t.freeTail = e.free.prev
	}
	if index != t.freeHead {
		t.entries[e.free.prev].free.next = e.free.next
	} else {
		t.freeHead = e.free.next
	}

	e.generation = h.Generation()
	e.toOccupied(object, typ, false)
	t.freeCount--
	return nil
}

// Free validates h with the destroyed flag ignored, so a soft-destroyed
// entry can still be released, then clears the slot, advances its
// generation, and appends it to the free-list tail. On validation
// failure the table is unchanged.
//
// The caller must hold the table lock in exclusive mode.
func (t *Table) Free(typ handletable.Type, h handletable.Handle) error {
	index, reason := t.checkValid(h, true, typ)
	if reason != "" {
		logInvalid("free", h, reason)
		return errors.StaleHandle(errors.PhaseFree, h, reason)
	}

	size := uint32(len(t.entries))
	if t.freeTail != InvalidIndex && (t.freeTail >= size || t.entries[t.freeTail].state != slotFree) {
		err := errors.Corruption(errors.PhaseFree,
			"free list tail %d invalid (size %d)", t.freeTail, size)
		Logger().Error("handle table corrupted",
			zap.Uint32("tail", t.freeTail),
			zap.Uint32("size", size),
			zap.Error(err))
		return err
	}

	e := &t.entries[index]
	e.toFree()
	t.freeCount++

	if t.freeTail == InvalidIndex {
		t.freeHead = index
		t.freeTail = index
	} else {
		e.free.prev = t.freeTail
		t.entries[t.freeTail].free.next = index
		t.freeTail = index
	}
	return nil
}

// MarkDestroyed sets the soft-delete flag on the entry h names. The
// entry stays occupied, keeps its type and generation, and still resolves
// through the IgnoreDestroyed and Each paths until freed. Returns false
// when h does not name a valid, non-destroyed entry.
//
// The caller must hold the table lock in exclusive mode.
func (t *Table) MarkDestroyed(h handletable.Handle) bool {
	index, reason := t.checkValid(h, false, handletable.TypeAny)
	if reason != "" {
		logInvalid("mark_destroyed", h, reason)
		return false
	}
	t.entries[index].occ.destroyed = true
	return true
}

// UnmarkDestroyed clears the soft-delete flag. It reports success even
// for handles that no longer validate: the producer and consumer of a
// destroy notice may race, and the late side must not fail.
//
// The caller must hold the table lock in exclusive mode.
func (t *Table) UnmarkDestroyed(h handletable.Handle) bool {
	index, reason := t.checkValid(h, true, handletable.TypeAny)
	if reason != "" {
		return true
	}
	if !t.entries[index].occ.destroyed {
		Logger().Debug("unmark without prior mark", zap.Stringer("handle", h))
	}
	t.entries[index].occ.destroyed = false
	return true
}
