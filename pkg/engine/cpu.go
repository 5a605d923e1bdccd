package engine

import (
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/wire"
)

const cpuKernelIterations = 1_000_000

// cpuKernel is the CPU-bound arithmetic kernel both CPU loops run
// repeatedly: a fixed-iteration integer wrap-add accumulator. Its
// result is discarded; it exists purely to burn a bounded, measurable
// amount of CPU time per invocation.
func cpuKernel() {
	var acc uint64
	for i := 0; i < cpuKernelIterations; i++ {
		acc += uint64(i)
	}
	_ = acc
}

// runCPU is the CPU generator (spec.md §4.2). It returns immediately
// (admission never blocks beyond minting an id) when p.Threads == 0,
// and when load was provided but out of (0,100] it does not even get
// called — AdmitCPU rejects before admission in that case.
func runCPU(p wire.CPUParams, stop *stopSignal, id string) {
	deadline := time.Now().Add(p.Duration)

	if p.Fork {
		runCPUFork(p, id)
		return
	}

	var wg sync.WaitGroup
	for i := uint(0); i < p.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.LoadProvided {
				cpuDutyCycleLoop(p.TargetLoad, p.Indefinite, deadline, stop)
			} else {
				cpuFullThrottleLoop(p.Indefinite, deadline, stop)
			}
		}()
	}
	wg.Wait()
}

func cpuDutyCycleLoop(targetLoad float64, indefinite bool, deadline time.Time, stop *stopSignal) {
	const period = 100 * time.Millisecond
	work := time.Duration(float64(period) * targetLoad / 100.0)
	sleep := period - work

	for {
		workUntil := time.Now().Add(work)
		for time.Now().Before(workUntil) {
			if stop.Stopped() {
				return
			}
			cpuKernel()
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
		if !indefinite && time.Now().After(deadline) {
			return
		}
		if stop.Stopped() {
			return
		}
	}
}

func cpuFullThrottleLoop(indefinite bool, deadline time.Time, stop *stopSignal) {
	for {
		cpuKernel()
		if !indefinite && time.Now().After(deadline) {
			return
		}
		if stop.Stopped() {
			return
		}
	}
}

// runCPUFork spawns p.Threads child "sleep" processes, each sleeping
// for p.Duration and exiting, and waits for all of them. Cancellation
// is best-effort: stopping the parent's stop signal does not interrupt
// already-spawned children (spec.md §4.2).
func runCPUFork(p wire.CPUParams, id string) {
	seconds := p.Duration.Seconds()
	if p.Indefinite {
		// An indefinite fork-mode task has no duration to hand the
		// child; approximate "run until stopped" with a long sleep,
		// since fork-mode cancellation is best-effort OS-level wait
		// anyway (spec.md §4.2).
		seconds = 24 * 60 * 60
	}

	var wg sync.WaitGroup
	for i := uint(0); i < p.Threads; i++ {
		wg.Add(1)
		go func(idx uint) {
			defer wg.Done()
			cmd := exec.Command("sleep", strconv.FormatFloat(seconds, 'f', -1, 64))
			if err := cmd.Run(); err != nil {
				log.WithTaskID(id).Warn().Msg("fork-mode cpu child exited with error")
			}
		}(i)
	}
	wg.Wait()
}
