// Package cluster abstracts the orchestrator behind the capability set
// spec.md §9 names: list nodes, create/delete a pod, create/delete a
// service, and list pods by label. The controller depends only on
// this interface, never on a concrete orchestrator client, so it can
// be exercised against pkg/cluster/memstore in tests and against
// pkg/cluster/k8sapi in production.
package cluster

import "context"

// Node is the orchestrator's view of a cluster node, trimmed to the
// one field the controller's /nodes endpoint exposes.
type Node struct {
	Name string
}

// PodSpec is the minimal shape the controller needs to provision a
// worker pod: a name, the labels it must carry, the node it is pinned
// to, the image it runs, the port it exposes, and an optional pull
// secret.
type PodSpec struct {
	Name            string
	Namespace       string
	Labels          map[string]string
	NodeName        string
	Image           string
	Port            int
	ImagePullSecret string
}

// ServiceSpec is the minimal shape for a headless service fronting a
// single pinned pod.
type ServiceSpec struct {
	Name      string
	Namespace string
	Labels    map[string]string
	Selector  map[string]string
	Port      int
	TargetPort int
}

// Pod is the orchestrator's view of a running worker pod, trimmed to
// what the broadcast fan-out needs: its name and the node it's pinned
// to (spec.md §4.6 step 2, "extract the pinned node name").
type Pod struct {
	Name     string
	NodeName string
}

// API is the capability set the controller is built against.
// Implementations must treat every call as independent: a failure in
// CreateService after a successful CreatePod does not roll the pod
// back (spec.md §4.5, §9 open question).
type API interface {
	ListNodes(ctx context.Context) ([]Node, error)
	CreatePod(ctx context.Context, spec PodSpec) error
	CreateService(ctx context.Context, spec ServiceSpec) error
	DeletePod(ctx context.Context, namespace, name string) error
	DeleteService(ctx context.Context, namespace, name string) error
	ListPodsByLabel(ctx context.Context, namespace, selector string) ([]Pod, error)
}
