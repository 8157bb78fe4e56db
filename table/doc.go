// Package table implements a growable slot table that maps compact
// 32-bit handles to caller-owned objects.
//
// # Main Types
//
//   - Table: the slot table with its embedded free list and lock
//   - Options: growth tuning, lock identity, and growth observation
//   - Stats: point-in-time occupancy snapshot
//
// # Free List
//
// Free slots form a doubly linked list threaded through the entries
// themselves. Allocate pops from the head; Free appends at the tail, so
// released slots recycle in FIFO order and each slot rests as long as
// possible before its generation can wrap. Assign unlinks an arbitrary
// slot from the middle of the list.
//
// # Growth
//
// The table starts empty and grows in fixed increments. Allocate grows
// ahead of demand whenever the free count falls to the configured
// low-water mark; Assign grows on demand when the requested index lies
// beyond the current size. Size is capped at the 24-bit index ceiling
// and entries are never reclaimed.
//
// # Thread Safety
//
// Table operations do not lock internally. Callers bracket one or more
// operations with Lock and Unlock, choosing Shared for lookups and
// iteration and Exclusive for anything that mutates. The AllocateSafe,
// AssignSafe, and FreeSafe wrappers bundle a single mutation with its
// exclusive acquisition. Lock acquisitions are reported to the
// lockorder registry, so misordered nesting panics in debug runs.
//
// # Example
//
//	tbl := table.NewWithDefaults()
//	h, err := tbl.AllocateSafe(conn, TypeConnection, true)
//	if err != nil {
//		return err
//	}
//	tbl.Lock(table.Shared)
//	obj, ok := tbl.ObjectByType(h, TypeConnection)
//	tbl.Unlock(table.Shared)
//	if ok {
//		obj.(*Connection).Ping()
//	}
//	_ = tbl.FreeSafe(TypeConnection, h)
package table
