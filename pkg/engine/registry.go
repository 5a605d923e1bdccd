// Package engine implements the per-node worker: a task registry with
// cooperative cancellation (§4.1), the three load generators (§4.2),
// and the HTTP surface that admits and controls them (§4.3).
package engine

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cuemby/loadstorm/pkg/wire"
)

// stopSignal is the thread-safe boolean cell a task's workers poll and
// a cancellation path sets. Reads and writes go through the mutex so
// the zero value is immediately safe to share.
type stopSignal struct {
	mu      sync.Mutex
	stopped bool
}

func newStopSignal() *stopSignal {
	return &stopSignal{}
}

func (s *stopSignal) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *stopSignal) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// task is the registry's bookkeeping record for one admitted stress
// job: its stop signal and a channel closed by the generator when it
// exits, which the reaper waits on.
type task struct {
	id   string
	kind wire.StressKind
	stop *stopSignal
	done chan struct{}
}

// Registry is the engine's process-wide id->task map (spec.md §3
// TaskRegistry). The mutex is held only for map operations, never
// across I/O or compute, per §5's shared-resource policy.
type Registry struct {
	mu      sync.Mutex
	tasks   map[string]*task
	counter atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*task),
	}
}

// nextID mints a "<kind>-<counter>" id off the registry's single
// lock-free atomic counter, shared across all three kinds so the
// suffix space is globally unique regardless of which kinds admit
// concurrently (spec.md §9).
func (r *Registry) nextID(kind wire.StressKind) string {
	n := r.counter.Add(1)
	return string(kind) + "-" + strconv.FormatUint(n, 10)
}

// Admit registers a new task under a freshly minted id and returns it
// along with its stop signal. The caller is responsible for launching
// the generator and for calling Finish when it finishes; Admit
// itself never blocks on the generator's execution, only on the
// registry's short critical section, satisfying §4.1's requirement
// that registration be visible before admit returns.
func (r *Registry) Admit(kind wire.StressKind) (id string, stop *stopSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id = r.nextID(kind)
	t := &task{
		id:   id,
		kind: kind,
		stop: newStopSignal(),
		done: make(chan struct{}),
	}
	r.tasks[id] = t
	return id, t.stop
}

// Reap waits for the generator bound to id to finish, then removes
// the id from the registry. Completion alone triggers removal; the
// stop signal is never consulted here (spec.md §4.1's reaper
// protocol), so a stopped task and a naturally completed task are
// indistinguishable to observers of the registry.
func (r *Registry) Reap(id string) {
	r.mu.Lock()
	t, ok := r.tasks[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	<-t.done

	r.mu.Lock()
	delete(r.tasks, id)
	r.mu.Unlock()
}

// Finish signals the reaper that id's generator has returned. Safe to
// call exactly once per task; called from a deferred close in the
// generator's executor wrapper so a panic mid-run still reaps.
func (r *Registry) Finish(id string) {
	r.mu.Lock()
	t, ok := r.tasks[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	close(t.done)
}

// List returns a point-in-time snapshot of registered ids, any order.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	return ids
}

// Stop sets id's stop signal if present; a missing id is a no-op,
// matching §4.1's "returns success either way."
func (r *Registry) Stop(id string) {
	r.mu.Lock()
	t, ok := r.tasks[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	t.stop.Stop()
}

// StopAll sets the stop signal of every id registered at the moment
// the snapshot is taken and returns the count addressed. Ids admitted
// after the snapshot are unaffected (spec.md §8 invariant).
func (r *Registry) StopAll() int {
	r.mu.Lock()
	signals := make([]*stopSignal, 0, len(r.tasks))
	for _, t := range r.tasks {
		signals = append(signals, t.stop)
	}
	r.mu.Unlock()
	for _, s := range signals {
		s.Stop()
	}
	return len(signals)
}
