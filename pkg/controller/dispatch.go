package controller

import (
	"context"
	"fmt"

	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/wireclient"
)

// nodeHasWorker implements the REDESIGN pre-check: before dispatching
// to a node, confirm a worker pod exists for it, so a missing engine
// surfaces as a 404 instead of a downstream connection error (spec.md
// §9's open question, resolved per SPEC_FULL's redesign).
func (c *Controller) nodeHasWorker(ctx context.Context, node string) (bool, error) {
	selector := fmt.Sprintf("stateful-id=%s", config.StatefulIDLabel(node))
	pods, err := c.api.ListPodsByLabel(ctx, c.cluster.Namespace, selector)
	if err != nil {
		return false, err
	}
	return len(pods) > 0, nil
}

// dispatchForward is the shared implementation behind the node-
// addressed stress and tasks/stop forwards (spec.md §4.4, §4.6 last
// paragraph): resolve node to a URL by the deterministic naming rule,
// forward the call unchanged, and relay the result. It never
// reinterprets the request body or the response.
func (c *Controller) dispatchForward(ctx context.Context, node, path string, call func(url string) (wireclient.Response, error)) (wireclient.Response, *dispatchError) {
	ok, err := c.nodeHasWorker(ctx, node)
	if err != nil {
		log.WithNode(node).Error().Err(err).Str("path", path).Msg("checking for worker failed")
		return wireclient.Response{}, &dispatchError{status: 502, message: "checking for worker: " + err.Error()}
	}
	if !ok {
		log.WithNode(node).Warn().Str("path", path).Msg("no worker registered for node")
		return wireclient.Response{}, &dispatchError{status: 404, message: fmt.Sprintf("no worker registered for node %q", node)}
	}

	url := c.cluster.EndpointURL(node, path)
	resp, err := call(url)
	if err != nil {
		log.WithNode(node).Error().Err(err).Str("path", path).Msg("dispatch to worker failed")
		return wireclient.Response{}, &dispatchError{status: 502, message: err.Error()}
	}
	return resp, nil
}

// dispatchError carries the status/body the HTTP layer should surface
// when dispatch itself (not the downstream engine) fails.
type dispatchError struct {
	status  int
	message string
}
