package engine

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/metrics"
	"github.com/cuemby/loadstorm/pkg/wire"
)

// NewServer builds the engine's HTTP surface (spec.md §4.3, §6): the
// three stress endpoints, task listing, individual and bulk stop, and
// the ambient health/readiness/metrics endpoints. CORS is permissive
// on every route, per §6.
func NewServer(e *Engine) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /cpu-stress", e.handleCPU)
	mux.HandleFunc("POST /mem-stress", e.handleMem)
	mux.HandleFunc("POST /disk-stress", e.handleDisk)
	mux.HandleFunc("GET /tasks", e.handleList)
	mux.HandleFunc("POST /stop/{id}", e.handleStop)
	mux.HandleFunc("POST /stop-all", e.handleStopAll)

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

func decodeRequest(r *http.Request) (wire.TestRequest, error) {
	var req wire.TestRequest
	if r.Body == nil {
		return req, nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		if err.Error() == "EOF" {
			return req, nil
		}
		return req, err
	}
	return req, nil
}

// writeAdmissionError renders the two AdmissionError kinds the way
// spec.md §7 requires them to differ: a malformed body is a 400, an
// out-of-range parameter is a 200 carrying a warning and no task id.
func writeAdmissionError(w http.ResponseWriter, ae *wire.AdmissionError) {
	if ae.Kind == wire.OutOfRange {
		writeText(w, http.StatusOK, "warning: "+ae.Message)
		return
	}
	writeText(w, http.StatusBadRequest, ae.Message)
}

func (e *Engine) handleCPU(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeAdmissionError(w, wire.NewMalformedError("malformed request: "+err.Error()))
		return
	}

	id, admitErr := e.AdmitCPU(req)
	if admitErr != nil {
		if ae, ok := admitErr.(*wire.AdmissionError); ok {
			writeAdmissionError(w, ae)
			return
		}
		writeAdmissionError(w, wire.NewMalformedError(admitErr.Error()))
		return
	}
	writeText(w, http.StatusOK, "CPU stress task started with ID: "+id)
}

func (e *Engine) handleMem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeAdmissionError(w, wire.NewMalformedError("malformed request: "+err.Error()))
		return
	}
	id := e.AdmitMem(req)
	writeText(w, http.StatusOK, "Memory stress task started with ID: "+id)
}

func (e *Engine) handleDisk(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeAdmissionError(w, wire.NewMalformedError("malformed request: "+err.Error()))
		return
	}
	id := e.AdmitDisk(req)
	writeText(w, http.StatusOK, "Disk stress task started with ID: "+id)
}

// handleList implements GET /tasks, plus the optional ?kind=cpu|mem|disk
// filter: a pure projection over the same snapshot, the unfiltered
// listing is unaffected.
func (e *Engine) handleList(w http.ResponseWriter, r *http.Request) {
	all := e.List()
	kind := r.URL.Query().Get("kind")

	ids := make([]string, 0, len(all))
	for _, id := range all {
		if kind != "" && kindFromID(id) != kind {
			continue
		}
		ids = append(ids, id)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ids)
}

func (e *Engine) handleStop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e.Stop(id)
	log.WithTaskID(id).Info().Msg("stop requested")
	writeText(w, http.StatusOK, "stop requested for task "+id)
}

func (e *Engine) handleStopAll(w http.ResponseWriter, r *http.Request) {
	n := e.StopAll()
	writeText(w, http.StatusOK, fmt.Sprintf("stop requested for %d task(s)", n))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
