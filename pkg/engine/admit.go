package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cuemby/loadstorm/pkg/events"
	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/metrics"
	"github.com/cuemby/loadstorm/pkg/wire"
)

// Engine ties the task registry to the three load generators and is
// the receiver every HTTP handler calls into.
type Engine struct {
	registry *Registry
	events   *events.Broker
}

func New() *Engine {
	broker := events.NewBroker()
	broker.Start()
	return &Engine{registry: NewRegistry(), events: broker}
}

// Events returns the engine's task-lifecycle event broker, so an
// operator can subscribe to task.admitted/task.stopped/task.completed
// notifications.
func (e *Engine) Events() *events.Broker {
	return e.events
}

// Close stops the engine's event broker. Safe to call once during
// process shutdown.
func (e *Engine) Close() {
	e.events.Stop()
}

// AdmitCPU implements spec.md §4.1's admit operation for the CPU
// generator, including the out-of-range rejection in §4.2: when load
// was supplied but falls outside (0,100], no id is minted and no
// registry entry is created.
func (e *Engine) AdmitCPU(req wire.TestRequest) (string, error) {
	p := req.CPUParams()
	if p.LoadProvided && (p.TargetLoad <= 0 || p.TargetLoad > 100) {
		metrics.TasksRejectedTotal.WithLabelValues(string(wire.KindCPU), "out_of_range").Inc()
		return "", wire.NewOutOfRangeError(fmt.Sprintf("load %.2f is out of range (0,100]", p.TargetLoad))
	}

	id, stop := e.registry.Admit(wire.KindCPU)
	e.launch(id, wire.KindCPU, func() { runCPU(p, stop, id) })
	return id, nil
}

// AdmitMem implements admit for the memory generator.
func (e *Engine) AdmitMem(req wire.TestRequest) string {
	p := req.MemParams()
	id, stop := e.registry.Admit(wire.KindMem)
	e.launch(id, wire.KindMem, func() { runMem(p, stop) })
	return id
}

// AdmitDisk implements admit for the disk generator.
func (e *Engine) AdmitDisk(req wire.TestRequest) string {
	p := req.DiskParams()
	id, stop := e.registry.Admit(wire.KindDisk)
	e.launch(id, wire.KindDisk, func() { runDisk(p, stop, id) })
	return id
}

// launch runs generator on a dedicated goroutine — the "blocking
// executor" spec.md §5 requires stress work to run on, so it never
// starves the HTTP scheduler — and binds the registry's reaper to its
// completion. A panicking generator still reaches Finish via the
// deferred recover, so the reaper always removes the id (spec.md
// §4.1's failure semantics).
func (e *Engine) launch(id string, kind wire.StressKind, generator func()) {
	metrics.TasksAdmittedTotal.WithLabelValues(string(kind)).Inc()
	metrics.TasksActive.WithLabelValues(string(kind)).Inc()
	e.events.Publish(&events.Event{
		ID:      uuid.NewString(),
		Type:    events.EventTaskAdmitted,
		Message: fmt.Sprintf("%s task admitted", kind),
		Metadata: map[string]string{
			"task_id": id,
			"kind":    string(kind),
		},
	})
	timer := metrics.NewTimer()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithTaskID(id).Error().Msg("stress generator panicked")
			}
			e.registry.Finish(id)
			metrics.TasksActive.WithLabelValues(string(kind)).Dec()
			timer.ObserveDurationVec(metrics.TaskDuration, string(kind))
			metrics.TasksCompletedTotal.WithLabelValues(string(kind)).Inc()
			e.events.Publish(&events.Event{
				ID:      uuid.NewString(),
				Type:    events.EventTaskCompleted,
				Message: fmt.Sprintf("%s task completed", kind),
				Metadata: map[string]string{
					"task_id": id,
					"kind":    string(kind),
				},
			})
		}()
		generator()
	}()

	go e.registry.Reap(id)
}

// List returns a snapshot of registered task ids.
func (e *Engine) List() []string {
	return e.registry.List()
}

// Stop sets id's stop signal, a no-op if id is not registered.
func (e *Engine) Stop(id string) {
	e.registry.Stop(id)
	metrics.TasksStoppedTotal.WithLabelValues(kindFromID(id)).Inc()
	e.events.Publish(&events.Event{
		ID:       uuid.NewString(),
		Type:     events.EventTaskStopped,
		Message:  "stop requested",
		Metadata: map[string]string{"task_id": id},
	})
}

// StopAll sets the stop signal of every currently registered id and
// returns the count addressed.
func (e *Engine) StopAll() int {
	n := e.registry.StopAll()
	return n
}

// kindFromID recovers the "<kind>-<counter>" prefix for labelling
// stop metrics; an unrecognised id labels as "unknown" rather than
// failing the stop (stopping an unknown id is a defined no-op).
func kindFromID(id string) string {
	for _, k := range []wire.StressKind{wire.KindCPU, wire.KindMem, wire.KindDisk} {
		prefix := string(k) + "-"
		if len(id) > len(prefix) && id[:len(prefix)] == prefix {
			return string(k)
		}
	}
	return "unknown"
}
