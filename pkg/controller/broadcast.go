package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/metrics"
)

// StopAll implements the broadcast /stop-all (spec.md §4.6): list
// worker pods by label, fan a per-node POST /stop-all out
// concurrently, and collect a "<node>: <status> - <body>" line per
// target (or "<node>: FAILED - <err>" on a transport failure).
// Individual failures are not fatal to the broadcast.
func (c *Controller) StopAll(ctx context.Context) []string {
	pods, err := c.api.ListPodsByLabel(ctx, c.cluster.Namespace, "app="+config.WorkerAppLabel)
	if err != nil {
		return []string{"FAILED listing worker pods - " + err.Error()}
	}
	if len(pods) == 0 {
		return []string{"No worker pods found."}
	}

	results := make([]string, len(pods))
	var wg sync.WaitGroup
	for i, p := range pods {
		wg.Add(1)
		go func(i int, node string) {
			defer wg.Done()
			results[i] = c.stopAllOn(ctx, node)
		}(i, p.NodeName)
	}
	wg.Wait()

	return results
}

func (c *Controller) stopAllOn(ctx context.Context, node string) string {
	timer := metrics.NewTimer()
	url := c.cluster.EndpointURL(node, "/stop-all")
	resp, err := c.wire.Post(ctx, url)
	timer.ObserveDurationVec(metrics.BroadcastDuration, "/stop-all")

	if err != nil {
		log.WithNode(node).Error().Err(err).Msg("stop-all broadcast to worker failed")
		metrics.BroadcastTargetsTotal.WithLabelValues("failed").Inc()
		return fmt.Sprintf("%s: FAILED - %s", node, err.Error())
	}
	metrics.BroadcastTargetsTotal.WithLabelValues("ok").Inc()
	return fmt.Sprintf("%s: %d - %s", node, resp.Status, string(resp.Body))
}
