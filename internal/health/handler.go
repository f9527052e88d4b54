// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// probeTimeout caps how long a readiness poll may hold the connection.
const probeTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

type probe struct {
	name  string
	check Checker
}

// Handler answers the liveness and readiness endpoints polled by the
// reverse proxy and the container orchestrator.
type Handler struct {
	probes   []probe
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(db, redis Checker) *Handler {
	h := &Handler{
		probes: []probe{
			{name: "postgres", check: db},
			{name: "redis", check: redis},
		},
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// Liveness only reports whether the process should keep running. Dependency
// state belongs to readiness.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, statusBody{
			Status: "shutting_down",
		})
		return
	}

	h.writeStatus(w, http.StatusOK, statusBody{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shutdown.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, statusBody{
			Status: "shutting_down",
		})
		return
	}

	if !h.ready.Load() {
		h.writeStatus(w, http.StatusServiceUnavailable, statusBody{
			Status: "not_ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	results := h.runProbes(ctx)

	status := "ok"
	code := http.StatusOK
	for _, res := range results {
		if !res.Healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	h.writeStatus(w, code, readinessBody{
		Status: status,
		Checks: results,
	})
}

func (h *Handler) runProbes(ctx context.Context) []probeResult {
	var wg sync.WaitGroup
	results := make([]probeResult, len(h.probes))

	for i, p := range h.probes {
		wg.Add(1)
		go func(i int, p probe) {
			defer wg.Done()
			results[i] = runProbe(ctx, p)
		}(i, p)
	}

	wg.Wait()
	return results
}

func runProbe(ctx context.Context, p probe) probeResult {
	res := probeResult{
		Name:    p.name,
		Healthy: true,
	}

	if p.check == nil {
		res.Healthy = false
		res.Message = "not configured"
		return res
	}

	start := time.Now()
	err := p.check.Ping(ctx)
	res.Latency = time.Since(start).String()

	if err != nil {
		res.Healthy = false
		res.Message = "ping failed"
	}

	return res
}

// SetReady flips the readiness gate. The server marks itself unready ahead
// of shutdown so load balancers drain before connections close.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func (h *Handler) writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_ = json.NewEncoder(w).Encode(body)
}

type statusBody struct {
	Status string `json:"status"`
}

type readinessBody struct {
	Status string        `json:"status"`
	Checks []probeResult `json:"checks"`
}

type probeResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}
