// Package k8sapi implements pkg/cluster.API against a real Kubernetes
// cluster via k8s.io/client-go's typed clientset.
package k8sapi

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"

	"github.com/cuemby/loadstorm/pkg/cluster"
	"github.com/cuemby/loadstorm/pkg/metrics"
)

// Client implements cluster.API using an in-cluster or kubeconfig-built
// clientset.
type Client struct {
	clientset kubernetes.Interface
}

func New(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

func (c *Client) ListNodes(ctx context.Context) ([]cluster.Node, error) {
	timer := metrics.NewTimer()
	list, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	c.observe("list_nodes", timer, err)
	if err != nil {
		return nil, err
	}

	nodes := make([]cluster.Node, 0, len(list.Items))
	for _, n := range list.Items {
		nodes = append(nodes, cluster.Node{Name: n.Name})
	}
	return nodes, nil
}

func (c *Client) CreatePod(ctx context.Context, spec cluster.PodSpec) error {
	timer := metrics.NewTimer()
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    spec.Labels,
		},
		Spec: corev1.PodSpec{
			NodeName:      spec.NodeName,
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{{
				Name:  spec.Name,
				Image: spec.Image,
				Ports: []corev1.ContainerPort{{ContainerPort: int32(spec.Port)}},
			}},
		},
	}
	if spec.ImagePullSecret != "" {
		pod.Spec.ImagePullSecrets = []corev1.LocalObjectReference{{Name: spec.ImagePullSecret}}
	}

	_, err := c.clientset.CoreV1().Pods(spec.Namespace).Create(ctx, pod, metav1.CreateOptions{})
	c.observe("create_pod", timer, err)
	return err
}

func (c *Client) CreateService(ctx context.Context, spec cluster.ServiceSpec) error {
	timer := metrics.NewTimer()
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    spec.Labels,
		},
		Spec: corev1.ServiceSpec{
			ClusterIP: corev1.ClusterIPNone,
			Selector:  spec.Selector,
			Ports: []corev1.ServicePort{{
				Port:       int32(spec.Port),
				TargetPort: intstr.FromInt(spec.TargetPort),
			}},
		},
	}

	_, err := c.clientset.CoreV1().Services(spec.Namespace).Create(ctx, svc, metav1.CreateOptions{})
	c.observe("create_service", timer, err)
	return err
}

func (c *Client) DeletePod(ctx context.Context, namespace, name string) error {
	timer := metrics.NewTimer()
	err := c.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	c.observe("delete_pod", timer, err)
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) DeleteService(ctx context.Context, namespace, name string) error {
	timer := metrics.NewTimer()
	err := c.clientset.CoreV1().Services(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	c.observe("delete_service", timer, err)
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) ListPodsByLabel(ctx context.Context, namespace, selector string) ([]cluster.Pod, error) {
	timer := metrics.NewTimer()
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	c.observe("list_pods_by_label", timer, err)
	if err != nil {
		return nil, err
	}

	pods := make([]cluster.Pod, 0, len(list.Items))
	for _, p := range list.Items {
		pods = append(pods, cluster.Pod{Name: p.Name, NodeName: p.Spec.NodeName})
	}
	return pods, nil
}

func (c *Client) observe(verb string, timer *metrics.Timer, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.ClusterAPICallsTotal.WithLabelValues(verb, outcome).Inc()
	timer.ObserveDurationVec(metrics.ClusterAPIDuration, verb)
}
