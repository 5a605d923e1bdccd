package controller

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/health"
	"github.com/cuemby/loadstorm/pkg/metrics"
)

// WatchClusterHealth polls every registered worker's /healthz endpoint
// on interval and feeds the aggregate result into the "cluster"
// readiness component (see pkg/metrics.GetReadiness). It runs until
// ctx is cancelled, so callers should launch it on its own goroutine.
//
// Each node gets its own health.Status, tracked across polls with the
// same consecutive-failure hysteresis the teacher's health package
// uses for container checks; the controller is reported unhealthy as
// soon as any known worker goes unhealthy.
func (c *Controller) WatchClusterHealth(ctx context.Context, interval time.Duration) {
	cfg := health.DefaultConfig()
	cfg.Interval = interval

	statuses := make(map[string]*health.Status)
	var mu sync.Mutex

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollClusterHealth(ctx, cfg, statuses, &mu)
		}
	}
}

func (c *Controller) pollClusterHealth(ctx context.Context, cfg health.Config, statuses map[string]*health.Status, mu *sync.Mutex) {
	pods, err := c.api.ListPodsByLabel(ctx, c.cluster.Namespace, "app="+config.WorkerAppLabel)
	if err != nil {
		metrics.UpdateComponent("cluster", false, "listing worker pods: "+err.Error())
		return
	}
	metrics.WorkersTotal.Set(float64(len(pods)))
	if len(pods) == 0 {
		metrics.UpdateComponent("cluster", true, "no workers registered")
		return
	}

	var wg sync.WaitGroup
	unhealthy := make([]string, 0)
	var resultsMu sync.Mutex

	for _, p := range pods {
		wg.Add(1)
		go func(node string) {
			defer wg.Done()
			result := c.checkWorkerHealth(ctx, cfg, node)

			mu.Lock()
			st, ok := statuses[node]
			if !ok {
				st = health.NewStatus()
				statuses[node] = st
			}
			st.Update(result, cfg)
			healthy := st.Healthy
			mu.Unlock()

			if !healthy {
				resultsMu.Lock()
				unhealthy = append(unhealthy, node)
				resultsMu.Unlock()
			}
		}(p.NodeName)
	}
	wg.Wait()

	if len(unhealthy) == 0 {
		metrics.UpdateComponent("cluster", true, fmt.Sprintf("%d workers healthy", len(pods)))
		return
	}
	metrics.UpdateComponent("cluster", false, fmt.Sprintf("unhealthy workers: %v", unhealthy))
}

// checkWorkerHealth probes a node's worker in two stages: a cheap TCP
// dial against the engine port first, so a pod that isn't listening at
// all is reported as a connection failure rather than waiting out an
// HTTP timeout, then the real /healthz check used to judge health.
func (c *Controller) checkWorkerHealth(ctx context.Context, cfg health.Config, node string) health.Result {
	addr := c.cluster.DNSName(node) + ":" + strconv.Itoa(c.cluster.WorkerPort)
	tcp := health.NewTCPChecker(addr).WithTimeout(cfg.Timeout)
	if result := tcp.Check(ctx); !result.Healthy {
		return result
	}

	checker := health.NewHTTPChecker(c.cluster.EndpointURL(node, "/healthz")).WithTimeout(cfg.Timeout)
	return checker.Check(ctx)
}
