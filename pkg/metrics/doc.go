/*
Package metrics defines the Prometheus metrics exposed by both the
engine and the controller, and a small component-registry health
checker used to back /healthz and /readyz.

# Metrics

Task lifecycle, observed on the engine:

  - loadstorm_tasks_active{kind} - gauge, tasks currently registered
  - loadstorm_tasks_admitted_total{kind}
  - loadstorm_tasks_rejected_total{kind,reason}
  - loadstorm_tasks_completed_total{kind}
  - loadstorm_tasks_stopped_total{kind}
  - loadstorm_task_duration_seconds{kind}

HTTP surface, observed on both binaries:

  - loadstorm_api_requests_total{route,status}
  - loadstorm_api_request_duration_seconds{route}

Controller dispatch and provisioning:

  - loadstorm_dispatch_duration_seconds{route}
  - loadstorm_broadcast_duration_seconds{route}
  - loadstorm_broadcast_targets_total{outcome}
  - loadstorm_cluster_api_calls_total{verb,outcome}
  - loadstorm_cluster_api_duration_seconds{verb}
  - loadstorm_workers_total

Handler() exposes the default Prometheus registry for scraping; Timer
is a small helper for attaching an elapsed duration to a histogram at
the end of a request.

# Health

RegisterComponent/UpdateComponent record the health of a named
subsystem ("registry" on the engine, "cluster" on the controller,
"http" on both). GetHealth aggregates every registered component;
GetReadiness checks only the names set by SetCriticalComponents.
HealthHandler, ReadyHandler, and LivenessHandler adapt these to
net/http for wiring into /healthz, /readyz, and /livez.
*/
package metrics
