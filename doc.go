// Package handletable provides a generation-counted handle table for
// caller-owned objects.
//
// A handle is an opaque 32-bit value naming one slot in a table. The table
// stores an object and a type tag per occupied slot and hands out handles
// that stay unique across free/reallocate cycles: every slot carries a
// small generation counter that advances when the slot is freed, so a
// stale handle held after free no longer resolves, even once the slot has
// been reused for a different object.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	handletable/         Root package with the Handle codec and Type tags
//	├── table/           Slot table: allocation, assignment, lookup, locking
//	├── errors/          Structured error types for diagnostics
//	├── lockorder/       Optional debug-mode lock order assertions
//	└── cmd/inspect/     Interactive table inspector and scenario runner
//
// # Handle Layout
//
// A handle packs three fields into 32 bits:
//
//	bits 31..30  generation  anti-reuse counter, 1..3 (0 reserved, never issued)
//	bits 29..6   index       slot position, up to 2^24-1
//	bits  5..0   instance    caller-assigned sub-tag, 0 unless explicitly set
//
// The layout is a compatibility contract: handles may be persisted or
// passed across process boundaries, so the bit positions never change.
// Handle 0 is never valid (a valid handle always has a non-zero
// generation).
//
// # Quick Start
//
// Create a table, allocate a handle, resolve it, free it:
//
//	const TypeDevice = handletable.Type(1)
//
//	tbl := table.NewWithDefaults()
//	h, err := tbl.AllocateSafe(dev, TypeDevice, true)
//	if err != nil {
//	    return err
//	}
//
//	tbl.Lock(table.Shared)
//	obj, ok := tbl.ObjectByType(h, TypeDevice)
//	tbl.Unlock(table.Shared)
//
//	tbl.FreeSafe(TypeDevice, h)
//
// The non-Safe entry points assume the caller already holds the table
// lock in the documented mode, which keeps composite sequences (free then
// reallocate, iterate then resolve) atomic under a single acquisition.
// See the table package documentation for the lock discipline.
package handletable
