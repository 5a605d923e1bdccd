package engine

import (
	"testing"

	"github.com/cuemby/loadstorm/pkg/wire"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_AdmitIsVisibleBeforeReturn(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Admit(wire.KindCPU)

	assert.Contains(t, r.List(), id)
}

func TestRegistry_FinishRemovesID(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Admit(wire.KindMem)

	done := make(chan struct{})
	go func() {
		r.Reap(id)
		close(done)
	}()

	r.Finish(id)
	<-done

	assert.NotContains(t, r.List(), id)
}

func TestRegistry_StopUnknownIDIsNoop(t *testing.T) {
	r := NewRegistry()
	assert.NotPanics(t, func() { r.Stop("cpu-9999") })
}

func TestRegistry_StopIsIdempotent(t *testing.T) {
	r := NewRegistry()
	id, stop := r.Admit(wire.KindDisk)

	r.Stop(id)
	r.Stop(id)

	assert.True(t, stop.Stopped())
}

func TestRegistry_IDsAreMonotonicAndUnique(t *testing.T) {
	r := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _ := r.Admit(wire.KindCPU)
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
}

func TestRegistry_StopAllOnlyAddressesSnapshot(t *testing.T) {
	r := NewRegistry()
	id1, stop1 := r.Admit(wire.KindCPU)
	_ = id1

	count := r.StopAll()
	assert.Equal(t, 1, count)
	assert.True(t, stop1.Stopped())

	id2, stop2 := r.Admit(wire.KindMem)
	assert.False(t, stop2.Stopped())
	_ = id2
}
