// Package lockorder provides a debug-mode lock ordering registry for
// deadlock diagnosis.
//
// Locks register each acquisition with a name and a numeric rank. While
// checking is enabled, a goroutine may only acquire locks in strictly
// increasing rank order; a violation panics with a diagnostic naming both
// locks. With checking disabled (the default) every call is a cheap no-op,
// so the calls can stay in production code paths.
//
// # Usage
//
// Assign each lock in the program a rank and bracket the underlying
// acquisition:
//
//	const (
//	    RankDeviceList = 10
//	    RankHandles    = 20
//	)
//
//	lockorder.Acquire("devices", RankDeviceList)
//	devMu.Lock()
//	...
//	devMu.Unlock()
//	lockorder.Release("devices", RankDeviceList)
//
// Enable checking in tests or debug builds before any lock activity:
//
//	lockorder.Enable()
//	defer lockorder.Disable()
//
// Acquiring "devices" while holding "handles" then panics, because rank
// 10 does not exceed the held rank 20.
//
// # Scope
//
// The registry tracks ranks per goroutine, keyed by goroutine ID. It does
// not distinguish shared from exclusive acquisition: ordering rules apply
// to both, which matches the discipline needed to avoid reader/writer
// deadlocks. Enabling mid-run is tolerated; releases of acquisitions made
// while disabled are ignored.
package lockorder
