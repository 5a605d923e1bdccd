package k8sapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/cuemby/loadstorm/pkg/cluster"
)

func TestClient_CreatePodAndService(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	c := New(clientset)
	ctx := context.Background()

	err := c.CreatePod(ctx, cluster.PodSpec{
		Name:      "worker-n1",
		Namespace: "default",
		Labels:    map[string]string{"app": "worker-engine", "stateful-id": "worker-n1"},
		NodeName:  "n1",
		Image:     "ghcr.io/cuemby/loadstorm-engine:latest",
		Port:      8080,
	})
	require.NoError(t, err)

	err = c.CreateService(ctx, cluster.ServiceSpec{
		Name:       "worker-n1",
		Namespace:  "default",
		Labels:     map[string]string{"app": "worker-engine"},
		Selector:   map[string]string{"stateful-id": "worker-n1"},
		Port:       8080,
		TargetPort: 8080,
	})
	require.NoError(t, err)

	pods, err := c.ListPodsByLabel(ctx, "default", "app=worker-engine")
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, "worker-n1", pods[0].Name)
	assert.Equal(t, "n1", pods[0].NodeName)
}

func TestClient_DeletePodNotFoundIsNotError(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	c := New(clientset)

	err := c.DeletePod(context.Background(), "default", "worker-missing")
	assert.NoError(t, err)
}

func TestClient_ListNodes(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	c := New(clientset)

	nodes, err := c.ListNodes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nodes)
}
