package controller

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cuemby/loadstorm/pkg/cluster"
	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/events"
)

// Spawn implements /spawn-engine (spec.md §4.5): create the worker
// pod pinned to node, then the headless service selecting it.
// Deliberately does not roll the pod back if the service creation
// fails — an open question the spec preserves rather than resolves.
func (c *Controller) Spawn(ctx context.Context, node string) error {
	podName := config.PodName(node)
	labels := map[string]string{
		"app":         config.WorkerAppLabel,
		"stateful-id": config.StatefulIDLabel(node),
	}

	if err := c.api.CreatePod(ctx, cluster.PodSpec{
		Name:            podName,
		Namespace:       c.cluster.Namespace,
		Labels:          labels,
		NodeName:        node,
		Image:           c.cluster.WorkerImage,
		Port:            c.cluster.WorkerPort,
		ImagePullSecret: c.cluster.ImagePullSecret,
	}); err != nil {
		return err
	}

	if err := c.api.CreateService(ctx, cluster.ServiceSpec{
		Name:       config.ServiceName(node),
		Namespace:  c.cluster.Namespace,
		Labels:     labels,
		Selector:   map[string]string{"stateful-id": config.StatefulIDLabel(node)},
		Port:       c.cluster.WorkerPort,
		TargetPort: c.cluster.WorkerPort,
	}); err != nil {
		return err
	}

	c.events.Publish(&events.Event{
		ID:      uuid.NewString(),
		Type:    events.EventWorkerSpawned,
		Message: fmt.Sprintf("worker provisioned for node %s", node),
	})
	return nil
}

// RemoveOutcome reports both halves of /remove-engine's independent
// pod/service deletion (spec.md §4.5).
type RemoveOutcome struct {
	Pod     string `json:"pod"`
	Service string `json:"service"`
}

// Remove implements /remove-engine: each deletion is attempted
// regardless of the other's outcome, and both are reported.
func (c *Controller) Remove(ctx context.Context, node string) RemoveOutcome {
	out := RemoveOutcome{Pod: "deleted", Service: "deleted"}

	if err := c.api.DeletePod(ctx, c.cluster.Namespace, config.PodName(node)); err != nil {
		out.Pod = "error: " + err.Error()
	}
	if err := c.api.DeleteService(ctx, c.cluster.Namespace, config.ServiceName(node)); err != nil {
		out.Service = "error: " + err.Error()
	}

	c.events.Publish(&events.Event{
		ID:      uuid.NewString(),
		Type:    events.EventWorkerRemoved,
		Message: fmt.Sprintf("worker removed for node %s", node),
		Metadata: map[string]string{
			"pod":     out.Pod,
			"service": out.Service,
		},
	})
	return out
}

// Nodes implements /nodes: a pass-through listing from the
// orchestrator.
func (c *Controller) Nodes(ctx context.Context) ([]cluster.Node, error) {
	return c.api.ListNodes(ctx)
}
