package engine

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/wire"
)

// runDisk is the disk generator (spec.md §4.2): each worker cycles
// write-then-read against its own file, never shared with another
// worker, so no locking is needed (spec.md §5).
func runDisk(p wire.DiskParams, stop *stopSignal, id string) {
	deadline := time.Now().Add(p.Duration)
	fileBytes := int(p.FileSizeMB) * 1_048_576

	var wg sync.WaitGroup
	for i := uint(0); i < p.Threads; i++ {
		wg.Add(1)
		go func(idx uint) {
			defer wg.Done()
			diskWorker(idx, fileBytes, p.Indefinite, deadline, stop, id)
		}(i)
	}
	wg.Wait()
}

func diskWorker(idx uint, fileBytes int, indefinite bool, deadline time.Time, stop *stopSignal, id string) {
	path := "disk_test_file_" + strconv.FormatUint(uint64(idx), 10)
	defer os.Remove(path)

	buf := make([]byte, fileBytes)

	for {
		if err := diskWriteCycle(path, buf); err != nil {
			log.WithTaskID(id).Warn().Err(err).Msg("disk stress write failed")
			return
		}
		if err := diskReadCycle(path, len(buf)); err != nil {
			log.WithTaskID(id).Warn().Err(err).Msg("disk stress read failed")
			return
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

func diskWriteCycle(path string, buf []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(buf)
	return err
}

func diskReadCycle(path string, size int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := make([]byte, size)
	_, err = f.Read(buf)
	return err
}
