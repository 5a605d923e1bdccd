// Package engine is the per-node worker: it owns the task registry
// (registry.go), the three load generators (cpu.go, mem.go, disk.go),
// and the HTTP surface that ties them together (server.go, admit.go).
//
// Admission never blocks on a generator's execution: Admit registers
// the task and returns before the generator's goroutine is scheduled,
// and a companion goroutine (the reaper) removes the entry once the
// generator's completion channel closes, regardless of whether that
// happened via the stop signal or a natural end.
package engine
