package docstore

import (
	"sync/atomic"
	"time"
)

var lastStamp atomic.Int64

// stamp returns a creation stamp: nanoseconds since epoch, strictly increasing
// within the process.
func stamp() int64 {
	for {
		last := lastStamp.Load()
		now := max(time.Now().UnixNano(), last+1)
		if lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}
