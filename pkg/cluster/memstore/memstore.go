// Package memstore implements pkg/cluster.API in memory, for testing
// the controller without a real Kubernetes cluster.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cuemby/loadstorm/pkg/cluster"
)

type pod struct {
	spec   cluster.PodSpec
	labels map[string]string
}

type service struct {
	spec cluster.ServiceSpec
}

// Store is an in-memory fake orchestrator. The zero value is not
// usable; use New. Seed nodes with SeedNode before handing the store
// to a controller under test.
type Store struct {
	mu       sync.Mutex
	nodes    []cluster.Node
	pods     map[string]pod     // key: namespace/name
	services map[string]service // key: namespace/name
}

func New() *Store {
	return &Store{
		pods:     make(map[string]pod),
		services: make(map[string]service),
	}
}

// SeedNode registers a node as present, for ListNodes to report.
func (s *Store) SeedNode(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, cluster.Node{Name: name})
}

func key(namespace, name string) string {
	return namespace + "/" + name
}

func (s *Store) ListNodes(ctx context.Context) ([]cluster.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cluster.Node, len(s.nodes))
	copy(out, s.nodes)
	return out, nil
}

func (s *Store) CreatePod(ctx context.Context, spec cluster.PodSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(spec.Namespace, spec.Name)
	if _, exists := s.pods[k]; exists {
		return fmt.Errorf("pod %s already exists", k)
	}
	s.pods[k] = pod{spec: spec, labels: spec.Labels}
	return nil
}

func (s *Store) CreateService(ctx context.Context, spec cluster.ServiceSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(spec.Namespace, spec.Name)
	if _, exists := s.services[k]; exists {
		return fmt.Errorf("service %s already exists", k)
	}
	s.services[k] = service{spec: spec}
	return nil
}

func (s *Store) DeletePod(ctx context.Context, namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pods, key(namespace, name))
	return nil
}

func (s *Store) DeleteService(ctx context.Context, namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.services, key(namespace, name))
	return nil
}

// ListPodsByLabel supports the single-clause "key=value" selectors the
// controller actually issues (spec.md §4.6's `app=worker-engine`); it
// does not implement the full Kubernetes label-selector grammar.
func (s *Store) ListPodsByLabel(ctx context.Context, namespace, selector string) ([]cluster.Pod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, v, ok := strings.Cut(selector, "=")
	if !ok {
		return nil, fmt.Errorf("unsupported label selector %q", selector)
	}

	var out []cluster.Pod
	for _, p := range s.pods {
		if p.spec.Namespace != namespace {
			continue
		}
		if p.labels[k] == v {
			out = append(out, cluster.Pod{Name: p.spec.Name, NodeName: p.spec.NodeName})
		}
	}
	return out, nil
}
