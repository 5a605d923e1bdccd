package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/loadstorm/pkg/cluster"
)

func TestStore_SpawnAndListByLabel(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.CreatePod(ctx, cluster.PodSpec{
		Name:      "worker-n1",
		Namespace: "default",
		Labels:    map[string]string{"app": "worker-engine", "stateful-id": "worker-n1"},
		NodeName:  "n1",
	})
	require.NoError(t, err)

	pods, err := s.ListPodsByLabel(ctx, "default", "app=worker-engine")
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "n1", pods[0].NodeName)
}

func TestStore_EmptyListReturnsNoPods(t *testing.T) {
	s := New()
	pods, err := s.ListPodsByLabel(context.Background(), "default", "app=worker-engine")
	require.NoError(t, err)
	assert.Empty(t, pods)
}

func TestStore_CreatePodTwiceFails(t *testing.T) {
	s := New()
	spec := cluster.PodSpec{Name: "worker-n1", Namespace: "default"}

	require.NoError(t, s.CreatePod(context.Background(), spec))
	assert.Error(t, s.CreatePod(context.Background(), spec))
}

func TestStore_DeletePodThenServiceIndependentOutcomes(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreatePod(ctx, cluster.PodSpec{Name: "worker-n1", Namespace: "default"}))

	assert.NoError(t, s.DeletePod(ctx, "default", "worker-n1"))
	assert.NoError(t, s.DeleteService(ctx, "default", "worker-n1"))
}

func TestStore_ListNodesReturnsSeeded(t *testing.T) {
	s := New()
	s.SeedNode("n1")
	s.SeedNode("n2")

	nodes, err := s.ListNodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
}
