package controller

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/loadstorm/pkg/cluster"
	"github.com/cuemby/loadstorm/pkg/cluster/memstore"
	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/health"
	"github.com/cuemby/loadstorm/pkg/metrics"
	"github.com/cuemby/loadstorm/pkg/wireclient"
)

func TestController_PollClusterHealth_NoWorkersIsHealthy(t *testing.T) {
	cfg := config.Default()
	c, _ := newTestController(cfg)

	cfgHealth := health.DefaultConfig()
	var mu sync.Mutex
	c.pollClusterHealth(context.Background(), cfgHealth, map[string]*health.Status{}, &mu)

	assert.Equal(t, "healthy", metrics.GetHealth().Status)
}

// A registered worker with no engine listening at its DNS name is
// reported unhealthy — the resolved URL never answers in the test
// sandbox, matching the behaviour exercised in the broadcast tests.
func TestController_PollClusterHealth_UnreachableWorkerIsUnhealthy(t *testing.T) {
	cfg := config.Default()
	store := memstore.New()
	require.NoError(t, store.CreatePod(context.Background(), cluster.PodSpec{
		Name:      "worker-n1",
		Namespace: cfg.Namespace,
		Labels:    map[string]string{"app": "worker-engine", "stateful-id": "worker-n1"},
		NodeName:  "n1",
	}))
	c := New(store, wireclient.New().WithTimeout(500*time.Millisecond), cfg)

	cfgHealth := health.DefaultConfig()
	cfgHealth.Retries = 1
	cfgHealth.Timeout = 500 * time.Millisecond
	statuses := map[string]*health.Status{}
	var mu sync.Mutex
	c.pollClusterHealth(context.Background(), cfgHealth, statuses, &mu)

	assert.True(t, strings.HasPrefix(metrics.GetHealth().Components["cluster"], "unhealthy"))
}
