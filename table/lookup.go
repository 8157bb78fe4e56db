package table

import (
	"fmt"

	"go.uber.org/zap"

	handletable "github.com/wippyai/handle-table"
)

// checkValid runs the validation ladder for h: index bounds, generation
// match, occupancy, destroyed flag unless ignored, then type unless the
// wildcard was asked for. It returns the decoded index and an empty
// reason on success, or the first failing check's reason.
func (t *Table) checkValid(h handletable.Handle, ignoreDestroyed bool, expected handletable.Type) (uint32, string) {
	index := h.Index()
	size := uint32(len(t.entries))
	if index >= size {
		return 0, fmt.Sprintf("index %d out of bounds (size %d)", index, size)
	}
	e := &t.entries[index]
	if h.Generation() != e.generation {
		return 0, fmt.Sprintf("generation mismatch (handle %d, entry %d)", h.Generation(), e.generation)
	}
	if e.state != slotOccupied {
		return 0, "entry is free"
	}
	if e.occ.destroyed && !ignoreDestroyed {
		return 0, "entry is destroyed"
	}
	if expected != handletable.TypeAny && expected != e.occ.typ {
		return 0, fmt.Sprintf("type mismatch (want %d, have %d)", expected, e.occ.typ)
	}
	return index, ""
}

// Stale handles are routine, so failed validations log at debug only.
func logInvalid(op string, h handletable.Handle, reason string) {
	Logger().Debug("handle validation failed",
		zap.String("op", op),
		zap.Stringer("handle", h),
		zap.Uint32("index", h.Index()),
		zap.String("reason", reason))
}

// IsValid reports whether h names a live entry. With ignoreDestroyed set,
// soft-destroyed entries count as live. A non-wildcard expected type must
// additionally match the entry's type; TypeAny matches any occupied slot.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) IsValid(h handletable.Handle, ignoreDestroyed bool, expected handletable.Type) bool {
	_, reason := t.checkValid(h, ignoreDestroyed, expected)
	if reason != "" {
		logInvalid("is_valid", h, reason)
		return false
	}
	return true
}

// Object resolves h to its stored object, accepting any occupied,
// non-destroyed entry regardless of type.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) Object(h handletable.Handle) (any, bool) {
	index, reason := t.checkValid(h, false, handletable.TypeAny)
	if reason != "" {
		logInvalid("lookup", h, reason)
		return nil, false
	}
	return t.entries[index].occ.object, true
}

// ObjectByType resolves h only when the entry carries the expected type.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) ObjectByType(h handletable.Handle, typ handletable.Type) (any, bool) {
	index, reason := t.checkValid(h, false, typ)
	if reason != "" {
		logInvalid("lookup", h, reason)
		return nil, false
	}
	return t.entries[index].occ.object, true
}

// ObjectIgnoreDestroyed resolves h even when the entry is soft-destroyed,
// for teardown paths that must reach the object after a destroy notice
// has landed.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) ObjectIgnoreDestroyed(h handletable.Handle, typ handletable.Type) (any, bool) {
	index, reason := t.checkValid(h, true, typ)
	if reason != "" {
		logInvalid("lookup", h, reason)
		return nil, false
	}
	return t.entries[index].occ.object, true
}

// ObjectType returns the type tag of the entry h names, or TypeAny when
// h does not validate.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) ObjectType(h handletable.Handle) handletable.Type {
	index, reason := t.checkValid(h, false, handletable.TypeAny)
	if reason != "" {
		logInvalid("lookup", h, reason)
		return handletable.TypeAny
	}
	return t.entries[index].occ.typ
}

// EntryObject returns the object at index without handle validation, for
// callers holding an index already verified by Each. A free slot yields
// nil.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) EntryObject(index uint32) any {
	return t.entries[index].occ.object
}

// EntryType returns the type tag at index without handle validation. A
// free slot yields TypeAny.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) EntryType(index uint32) handletable.Type {
	return t.entries[index].occ.typ
}

// EntryHandle reconstructs the handle naming the occupied slot at index
// from the slot's stored generation and instance.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) EntryHandle(index uint32) handletable.Handle {
	e := &t.entries[index]
	return handletable.NewHandle(index, e.generation, e.occ.instance)
}

// Each walks the occupied slots in index order starting at start,
// soft-destroyed entries included, and calls fn with each slot's index,
// reconstructed handle, type, and object. Return false from fn to stop.
// The walk reads live state, so the lock must be held across the whole
// call; to resume after dropping the lock, call Each again with the
// last index plus one.
//
// The caller must hold the table lock in at least shared mode.
func (t *Table) Each(start uint32, fn func(index uint32, h handletable.Handle, typ handletable.Type, object any) bool) {
	for i := start; i < uint32(len(t.entries)); i++ {
		e := &t.entries[i]
		if e.state != slotOccupied {
			continue
		}
		if !fn(i, handletable.NewHandle(i, e.generation, e.occ.instance), e.occ.typ, e.occ.object) {
			return
		}
	}
}
