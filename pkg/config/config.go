// Package config holds the deterministic cluster-naming constants the
// controller uses to translate a logical node name into a worker pod,
// headless service, label selector, and DNS name (spec.md §3
// "NodeIdentity", §6 "Worker naming").
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Cluster holds the naming and image constants referenced by
// /spawn-engine, /remove-engine, and the controller's URL construction.
// All fields have defaults; any may be overridden by environment
// variable or by a YAML file passed with --cluster-config.
type Cluster struct {
	// Namespace is the Kubernetes namespace worker pods/services live in.
	Namespace string `yaml:"namespace"`
	// ClusterSuffix is the cluster-local DNS suffix (e.g. "cluster.local").
	ClusterSuffix string `yaml:"clusterSuffix"`
	// WorkerImage is the container image run by spawned worker pods.
	WorkerImage string `yaml:"workerImage"`
	// ImagePullSecret is the name of the pull secret attached to worker
	// pods, or empty for none.
	ImagePullSecret string `yaml:"imagePullSecret,omitempty"`
	// WorkerPort is the port the engine listens on and the port the
	// headless service forwards to.
	WorkerPort int `yaml:"workerPort"`
}

// Default returns the built-in cluster-naming defaults.
func Default() Cluster {
	return Cluster{
		Namespace:     "default",
		ClusterSuffix: "cluster.local",
		WorkerImage:   "ghcr.io/cuemby/loadstorm-engine:latest",
		WorkerPort:    8080,
	}
}

// FromEnv applies LOADSTORM_NAMESPACE / LOADSTORM_CLUSTER_SUFFIX /
// LOADSTORM_WORKER_IMAGE / LOADSTORM_IMAGE_PULL_SECRET /
// LOADSTORM_WORKER_PORT overrides on top of Default().
func FromEnv() Cluster {
	c := Default()
	if v := os.Getenv("LOADSTORM_NAMESPACE"); v != "" {
		c.Namespace = v
	}
	if v := os.Getenv("LOADSTORM_CLUSTER_SUFFIX"); v != "" {
		c.ClusterSuffix = v
	}
	if v := os.Getenv("LOADSTORM_WORKER_IMAGE"); v != "" {
		c.WorkerImage = v
	}
	if v := os.Getenv("LOADSTORM_IMAGE_PULL_SECRET"); v != "" {
		c.ImagePullSecret = v
	}
	if v := os.Getenv("LOADSTORM_WORKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.WorkerPort = port
		}
	}
	return c
}

// LoadFile reads YAML overrides from path on top of base.
func LoadFile(path string, base Cluster) (Cluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read cluster config: %w", err)
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return base, fmt.Errorf("parse cluster config: %w", err)
	}
	return base, nil
}

// WorkerAppLabel is the constant label value every worker pod carries,
// used by the controller's broadcast label selector.
const WorkerAppLabel = "worker-engine"

// PodName is the deterministic pod/service name for a node (spec.md §6:
// "pod and service name worker-<node>"). Pure function of node.
func PodName(node string) string {
	return "worker-" + node
}

// ServiceName is identical to PodName: the headless service shares the
// pod's name.
func ServiceName(node string) string {
	return PodName(node)
}

// StatefulIDLabel is the "stateful-id" label value for a node's worker,
// used both as a pod label and as the service's selector.
func StatefulIDLabel(node string) string {
	return PodName(node)
}

// DNSName is the resolvable name of a node's worker service (spec.md §3
// NodeIdentity(d): "worker-<node>.<namespace>.svc.<cluster-suffix>").
// Pure function of node and cluster configuration.
func (c Cluster) DNSName(node string) string {
	return fmt.Sprintf("%s.%s.svc.%s", PodName(node), c.Namespace, c.ClusterSuffix)
}

// EndpointURL builds the full URL the controller forwards a stress
// request to for node N and HTTP path (spec.md §4.4). Pure function of
// node, path, and configuration: same inputs always produce the same
// URL.
func (c Cluster) EndpointURL(node, path string) string {
	return fmt.Sprintf("http://%s:%d%s", c.DNSName(node), c.WorkerPort, path)
}
