package engine

import (
	"sync"
	"time"

	"github.com/cuemby/loadstorm/pkg/wire"
)

const memPageStride = 4096

// runMem is the memory generator (spec.md §4.2): each worker holds a
// contiguous buffer resident by touching one byte per 4,096-byte
// stride, defeating lazy allocation so RSS reflects the requested
// footprint for the task's lifetime.
func runMem(p wire.MemParams, stop *stopSignal) {
	deadline := time.Now().Add(p.Duration)
	bufSize := int(p.MBPerTask) * 1_048_576

	var wg sync.WaitGroup
	for i := uint(0); i < p.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memWorker(bufSize, p.Indefinite, deadline, stop)
		}()
	}
	wg.Wait()
}

func memWorker(bufSize int, indefinite bool, deadline time.Time, stop *stopSignal) {
	if bufSize <= 0 {
		return
	}
	buf := make([]byte, bufSize)

	for {
		for off := 0; off < len(buf); off += memPageStride {
			buf[off] = 1
		}
		time.Sleep(500 * time.Millisecond)
		if !indefinite && time.Now().After(deadline) {
			return
		}
		if stop.Stopped() {
			return
		}
	}
}
