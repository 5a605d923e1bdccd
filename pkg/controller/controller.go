// Package controller implements the cluster-wide dispatcher: it
// resolves a logical node to a worker endpoint (dispatch.go),
// provisions and tears down worker pods (provision.go), fans
// cancellation out across the fleet (broadcast.go), and wires all of
// it onto an HTTP surface (server.go).
package controller

import (
	"github.com/cuemby/loadstorm/pkg/cluster"
	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/events"
	"github.com/cuemby/loadstorm/pkg/wireclient"
)

// Controller holds no task state of its own (spec.md §3: "Controller
// holds no persistent state"); every field here is either immutable
// configuration or a stateless client.
type Controller struct {
	api     cluster.API
	wire    *wireclient.Client
	cluster config.Cluster
	events  *events.Broker
}

func New(api cluster.API, wc *wireclient.Client, cfg config.Cluster) *Controller {
	broker := events.NewBroker()
	broker.Start()
	return &Controller{api: api, wire: wc, cluster: cfg, events: broker}
}

// Events returns the controller's provisioning-event broker, so an
// operator can subscribe to worker.spawned/worker.removed notifications.
func (c *Controller) Events() *events.Broker {
	return c.events
}

// Close stops the controller's event broker. Safe to call once during
// process shutdown.
func (c *Controller) Close() {
	c.events.Stop()
}
