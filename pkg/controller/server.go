package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cuemby/loadstorm/pkg/metrics"
	"github.com/cuemby/loadstorm/pkg/wireclient"
)

// NewServer builds the controller's HTTP surface (spec.md §4.4–§4.6,
// §6): node listing, worker provisioning, node-addressed stress
// forwards, and the stop-all broadcast.
func NewServer(c *Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /nodes", c.handleNodes)
	mux.HandleFunc("POST /spawn-engine", c.handleSpawn)
	mux.HandleFunc("POST /remove-engine", c.handleRemove)

	mux.HandleFunc("POST /cpu-stress", c.handleStressForward("/cpu-stress"))
	mux.HandleFunc("POST /mem-stress", c.handleStressForward("/mem-stress"))
	mux.HandleFunc("POST /disk-stress", c.handleStressForward("/disk-stress"))

	mux.HandleFunc("POST /tasks/{node}", c.handleTasksForward)
	mux.HandleFunc("POST /stop/{node}/{id}", c.handleStopForward)
	mux.HandleFunc("POST /stop-all", c.handleStopAll)

	mux.HandleFunc("GET /healthz", metrics.HealthHandler())
	mux.HandleFunc("GET /readyz", metrics.ReadyHandler())
	mux.HandleFunc("GET /livez", metrics.LivenessHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	return withCORS(withMetrics(mux))
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := r.Pattern
		if route == "" {
			route = r.URL.Path
		}
		metrics.APIRequestsTotal.WithLabelValues(route, fmt.Sprintf("%d", sw.status)).Inc()
		timer.ObserveDurationVec(metrics.APIRequestDuration, route)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (c *Controller) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := c.Nodes(r.Context())
	if err != nil {
		writeText(w, http.StatusBadGateway, "listing nodes: "+err.Error())
		return
	}
	type nodeJSON struct {
		Name string `json:"name"`
	}
	out := make([]nodeJSON, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeJSON{Name: n.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *Controller) handleSpawn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NodeName string `json:"node_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	if err := c.Spawn(r.Context(), body.NodeName); err != nil {
		writeText(w, http.StatusBadGateway, "spawn-engine failed: "+err.Error())
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("worker provisioned for node %s", body.NodeName))
}

func (c *Controller) handleRemove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NodeName string `json:"node_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeText(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, c.Remove(r.Context(), body.NodeName))
}

func (c *Controller) handleStressForward(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeText(w, http.StatusBadRequest, "reading request: "+err.Error())
			return
		}

		var peek struct {
			Node string `json:"node"`
		}
		if err := json.Unmarshal(body, &peek); err != nil {
			writeText(w, http.StatusBadRequest, "malformed request: "+err.Error())
			return
		}
		if peek.Node == "" {
			writeText(w, http.StatusBadRequest, "node is required")
			return
		}

		timer := metrics.NewTimer()
		resp, derr := c.dispatchForward(r.Context(), peek.Node, path, func(url string) (wireclient.Response, error) {
			return c.wire.Forward(r.Context(), url, body)
		})
		timer.ObserveDurationVec(metrics.DispatchDuration, path)
		relay(w, resp, derr)
	}
}

func (c *Controller) handleTasksForward(w http.ResponseWriter, r *http.Request) {
	node := r.PathValue("node")
	timer := metrics.NewTimer()
	resp, derr := c.dispatchForward(r.Context(), node, "/tasks", func(url string) (wireclient.Response, error) {
		return c.wire.Get(r.Context(), url)
	})
	timer.ObserveDurationVec(metrics.DispatchDuration, "/tasks/{node}")
	relay(w, resp, derr)
}

func (c *Controller) handleStopForward(w http.ResponseWriter, r *http.Request) {
	node := r.PathValue("node")
	id := r.PathValue("id")
	timer := metrics.NewTimer()
	resp, derr := c.dispatchForward(r.Context(), node, "/stop/"+id, func(url string) (wireclient.Response, error) {
		return c.wire.Post(r.Context(), url)
	})
	timer.ObserveDurationVec(metrics.DispatchDuration, "/stop/{node}/{id}")
	relay(w, resp, derr)
}

func (c *Controller) handleStopAll(w http.ResponseWriter, r *http.Request) {
	timer := metrics.NewTimer()
	results := c.StopAll(r.Context())
	timer.ObserveDurationVec(metrics.BroadcastDuration, "/stop-all")
	writeJSON(w, http.StatusOK, results)
}

func relay(w http.ResponseWriter, resp wireclient.Response, derr *dispatchError) {
	if derr != nil {
		writeText(w, derr.status, derr.message)
		return
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
