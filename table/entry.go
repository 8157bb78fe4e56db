package table

import (
	handletable "github.com/wippyai/handle-table"
)

// InvalidIndex is the sentinel for "no slot": it terminates free-list
// links and stands in for the head and tail of an empty free list.
const InvalidIndex = ^uint32(0)

// slotState discriminates the two entry variants.
type slotState uint8

const (
	slotFree slotState = iota
	slotOccupied
)

// freeLinks is the payload of a free slot: its neighbors in the doubly
// linked free list, or InvalidIndex at either end.
type freeLinks struct {
	prev uint32
	next uint32
}

// occupied is the payload of a live slot. The object is caller-owned;
// the table stores and returns it but never releases it.
type occupied struct {
	object    any
	typ       handletable.Type
	instance  uint8
	destroyed bool
}

// entry is one table slot. The generation field lives outside both
// payloads because it must survive free/reuse cycles: it is what makes a
// recycled slot mint handles distinct from the ones it minted before.
type entry struct {
	free       freeLinks
	occ        occupied
	state      slotState
	generation uint8
}

// toOccupied rewrites the slot as live, keeping its generation.
func (e *entry) toOccupied(object any, typ handletable.Type, destroyed bool) {
	e.state = slotOccupied
	e.free = freeLinks{}
	e.occ = occupied{object: object, typ: typ, destroyed: destroyed}
}

// toFree rewrites the slot as detached and free, clearing the payload
// and retiring the slot's current generation: the counter advances
// through 1..GenerationMax and wraps past 0, which is never minted, so
// handles to the previous occupant stop validating immediately.
func (e *entry) toFree() {
	e.state = slotFree
	e.occ = occupied{}
	e.free = freeLinks{prev: InvalidIndex, next: InvalidIndex}
	if e.generation >= handletable.GenerationMax {
		e.generation = 1
	} else {
		e.generation++
	}
}
