package lockorder

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Rank orders lock acquisition. A goroutine may only acquire locks with
// strictly increasing ranks.
type Rank int

type held struct {
	name string
	rank Rank
}

var (
	enabled atomic.Bool

	mu     sync.Mutex
	byGoro = make(map[uint64][]held)
)

// Enable turns on order checking for subsequent acquisitions.
func Enable() {
	enabled.Store(true)
}

// Disable turns checking off and discards all tracked state.
func Disable() {
	enabled.Store(false)
	mu.Lock()
	byGoro = make(map[uint64][]held)
	mu.Unlock()
}

// Enabled reports whether order checking is active.
func Enabled() bool {
	return enabled.Load()
}

// Acquire records that the current goroutine is taking the named lock.
// If checking is enabled and the rank does not exceed every rank already
// held by this goroutine, Acquire panics with a diagnostic.
func Acquire(name string, rank Rank) {
	if !enabled.Load() {
		return
	}
	gid := goroutineID()

	mu.Lock()
	defer mu.Unlock()

	stack := byGoro[gid]
	for _, h := range stack {
		if h.rank >= rank {
			panic(fmt.Sprintf(
				"lockorder: goroutine %d acquiring %q (rank %d) while holding %q (rank %d)",
				gid, name, rank, h.name, h.rank))
		}
	}
	byGoro[gid] = append(stack, held{name: name, rank: rank})
}

// Release records that the current goroutine dropped the named lock.
// Releases that have no matching tracked acquisition are ignored, so
// enabling checking mid-run does not produce false positives.
func Release(name string, rank Rank) {
	if !enabled.Load() {
		return
	}
	gid := goroutineID()

	mu.Lock()
	defer mu.Unlock()

	stack := byGoro[gid]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].name == name && stack[i].rank == rank {
			stack = append(stack[:i], stack[i+1:]...)
			if len(stack) == 0 {
				delete(byGoro, gid)
			} else {
				byGoro[gid] = stack
			}
			return
		}
	}
}

// Held returns the names of locks currently tracked for this goroutine,
// in acquisition order. Empty when checking is disabled.
func Held() []string {
	if !enabled.Load() {
		return nil
	}
	gid := goroutineID()

	mu.Lock()
	defer mu.Unlock()

	stack := byGoro[gid]
	names := make([]string, len(stack))
	for i, h := range stack {
		names[i] = h.name
	}
	return names
}
