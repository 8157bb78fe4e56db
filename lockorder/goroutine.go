package lockorder

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var goroutinePrefix = []byte("goroutine ")

var stackBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 64)
		return &buf
	},
}

// goroutineID extracts the current goroutine's numeric ID from the first
// line of its stack trace ("goroutine N [running]:"). There is no public
// runtime API for this; parsing the trace header is the established way
// for debug-only tooling.
func goroutineID() uint64 {
	bp := stackBufPool.Get().(*[]byte)
	defer stackBufPool.Put(bp)

	buf := (*bp)[:runtime.Stack(*bp, false)]
	buf = bytes.TrimPrefix(buf, goroutinePrefix)
	i := bytes.IndexByte(buf, ' ')
	if i < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
