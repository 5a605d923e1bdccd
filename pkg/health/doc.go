/*
Package health is a small, domain-agnostic health-check library: an
HTTP or TCP probe plus the consecutive-failure/success hysteresis
needed to turn a noisy stream of individual check results into a
stable up/down Status.

The controller probes each worker pod in two stages from a background
goroutine (see pkg/controller's WatchClusterHealth and
checkWorkerHealth): a TCPChecker dial against the engine port first,
so a pod with nothing listening yet fails fast instead of waiting out
an HTTP timeout, then an HTTPChecker against /healthz for the real
verdict. Either stage's Result feeds
metrics.UpdateComponent("cluster", ...), so GetReadiness reflects real
reachability rather than just "the process is up."

	checker := health.NewHTTPChecker(workerURL).WithTimeout(2 * time.Second)
	status := health.NewStatus()
	cfg := health.DefaultConfig()

	for {
		result := checker.Check(ctx)
		status.Update(result, cfg)
		metrics.UpdateComponent("cluster", status.Healthy, result.Message)
		time.Sleep(cfg.Interval)
	}

Config.Retries consecutive failures are required before Status.Healthy
flips to false; a single success flips it back. InStartPeriod
suppresses that flip during Config.StartPeriod after NewStatus, so a
slow-starting dependency isn't reported unhealthy before it's had a
chance to come up.
*/
package health
