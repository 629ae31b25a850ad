package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/payroute/gateway"
	"github.com/mstgnz/payroute/infra/response"
)

const version = "1.0.0"

// ProviderStatusLister reports provider configuration, implemented by gateway.Gateway
type ProviderStatusLister interface {
	Providers() []gateway.ProviderStatus
}

// SearchPinger is the OpenSearch client surface used by health checks
type SearchPinger interface {
	IsEnabled() bool
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	providers   ProviderStatusLister
	search      SearchPinger
	environment string
	startTime   time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                     `json:"status"`
	Version     string                     `json:"version"`
	Timestamp   time.Time                  `json:"timestamp"`
	Uptime      string                     `json:"uptime"`
	Environment string                     `json:"environment"`
	Providers   map[string]*ProviderHealth `json:"providers"`
	System      *SystemHealth              `json:"system"`
	Services    map[string]*ServiceHealth  `json:"services"`
}

// ProviderHealth represents payment provider configuration state
type ProviderHealth struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
	Error      string `json:"error,omitempty"`
}

// SystemHealth represents process resource usage
type SystemHealth struct {
	Memory     *MemoryHealth `json:"memory"`
	GoRoutines int           `json:"goroutines"`
}

// MemoryHealth represents memory usage
type MemoryHealth struct {
	Alloc      string `json:"alloc"`
	TotalAlloc string `json:"total_alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status      string `json:"status"`
	Healthy     bool   `json:"healthy"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler. search may be nil.
func NewHealthHandler(providers ProviderStatusLister, search SearchPinger, environment string) *HealthHandler {
	return &HealthHandler{
		providers:   providers,
		search:      search,
		environment: environment,
		startTime:   time.Now(),
	}
}

// CheckHealth reports provider configuration and dependent services
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Version:     version,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Environment: h.environment,
		Providers:   h.checkProvidersHealth(),
		System:      checkSystemHealth(),
		Services:    h.checkServicesHealth(ctx),
	}
	health.Status = determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Code:    statusCode,
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

// ListProviders returns the supported providers and whether each one has credentials
func (h *HealthHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	statuses := []gateway.ProviderStatus{}
	if h.providers != nil {
		statuses = h.providers.Providers()
	}
	response.Success(w, http.StatusOK, "Supported payment providers", statuses)
}

func (h *HealthHandler) checkProvidersHealth() map[string]*ProviderHealth {
	providers := make(map[string]*ProviderHealth)
	if h.providers == nil {
		return providers
	}

	for _, status := range h.providers.Providers() {
		health := &ProviderHealth{Configured: status.Configured, Status: "healthy"}
		if !status.Configured {
			health.Status = "not_configured"
			health.Error = status.Error
		}
		providers[status.Name] = health
	}
	return providers
}

func (h *HealthHandler) checkServicesHealth(ctx context.Context) map[string]*ServiceHealth {
	services := map[string]*ServiceHealth{
		"transaction_service": {
			Status:      "healthy",
			Healthy:     true,
			Description: "Payment routing service",
		},
	}
	if h.providers == nil {
		services["transaction_service"] = &ServiceHealth{
			Status: "unhealthy",
			Error:  "Transaction service not initialized",
		}
	}

	switch {
	case h.search == nil || !h.search.IsEnabled():
		services["opensearch"] = &ServiceHealth{
			Status:      "not_configured",
			Healthy:     true,
			Description: "OpenSearch logging disabled",
		}
	default:
		if err := h.search.Ping(ctx); err != nil {
			services["opensearch"] = &ServiceHealth{Status: "unhealthy", Error: err.Error()}
		} else {
			services["opensearch"] = &ServiceHealth{
				Status:      "healthy",
				Healthy:     true,
				Description: "Log and transaction event indexing",
			}
		}
	}

	return services
}

func checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Memory: &MemoryHealth{
			Alloc:      formatBytes(memStats.Alloc),
			TotalAlloc: formatBytes(memStats.TotalAlloc),
			Sys:        formatBytes(memStats.Sys),
			GCRuns:     memStats.NumGC,
		},
		GoRoutines: runtime.NumGoroutine(),
	}
}

// determineOverallStatus: a missing service is fatal, an unreachable log
// sink or a provider without credentials only degrades the service.
func determineOverallStatus(health *HealthStatus) string {
	if service, ok := health.Services["transaction_service"]; ok && !service.Healthy {
		return "unhealthy"
	}

	if service, ok := health.Services["opensearch"]; ok && !service.Healthy {
		return "degraded"
	}

	for _, p := range health.Providers {
		if !p.Configured {
			return "degraded"
		}
	}

	return "healthy"
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
