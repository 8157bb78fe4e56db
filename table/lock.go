package table

import (
	handletable "github.com/wippyai/handle-table"
	"github.com/wippyai/handle-table/lockorder"
)

// LockMode selects how the table lock is acquired.
type LockMode int

const (
	// Shared admits concurrent holders for lookups and iteration.
	Shared LockMode = iota
	// Exclusive admits a single holder for mutations.
	Exclusive
)

// Lock acquires the table lock in the given mode and records the
// acquisition with the lockorder registry under the table's configured
// name and rank.
func (t *Table) Lock(mode LockMode) {
	lockorder.Acquire(t.opts.LockName, t.opts.LockRank)
	if mode == Exclusive {
		t.mu.Lock()
	} else {
		t.mu.RLock()
	}
}

// Unlock releases the table lock. The mode must match the acquisition.
func (t *Table) Unlock(mode LockMode) {
	if mode == Exclusive {
		t.mu.Unlock()
	} else {
		t.mu.RUnlock()
	}
	lockorder.Release(t.opts.LockName, t.opts.LockRank)
}

// AllocateSafe brackets a single Allocate with an exclusive acquisition,
// for callers with no surrounding lock scope of their own.
func (t *Table) AllocateSafe(object any, typ handletable.Type, makeValid bool) (handletable.Handle, error) {
	t.Lock(Exclusive)
	defer t.Unlock(Exclusive)
	return t.Allocate(object, typ, makeValid)
}

// AssignSafe brackets a single Assign with an exclusive acquisition.
func (t *Table) AssignSafe(object any, typ handletable.Type, h handletable.Handle) error {
	t.Lock(Exclusive)
	defer t.Unlock(Exclusive)
	return t.Assign(object, typ, h)
}

// FreeSafe brackets a single Free with an exclusive acquisition.
func (t *Table) FreeSafe(typ handletable.Type, h handletable.Handle) error {
	t.Lock(Exclusive)
	defer t.Unlock(Exclusive)
	return t.Free(typ, h)
}
