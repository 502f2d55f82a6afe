package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/skyboard/internal/common"
	"infinite-experiment/skyboard/internal/models/dtos/responses"
)

// Pinger reports whether a dependency answers
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthProbeKey = "HEALTH_probe"

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Verifies the dashboard service, its flights API and its cache.
// @Tags Misc
// @Success 200 {object} responses.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(flightsAPI Pinger, cache common.CacheInterface, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]responses.ServiceStatus)

		// Check flights API
		apiStatus := responses.ServiceStatus{Status: "ok", Details: "Flights API reachable"}
		if err := flightsAPI.Ping(ctx); err != nil {
			apiStatus = responses.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["flights_api"] = apiStatus

		// Check cache round trip
		cacheStatus := responses.ServiceStatus{Status: "ok", Details: "Cache writable"}
		if err := probeCache(ctx, cache); err != nil {
			cacheStatus = responses.ServiceStatus{Status: "down", Details: err.Error()}
		}
		services["cache"] = cacheStatus

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := responses.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func probeCache(ctx context.Context, cache common.CacheInterface) error {
	if err := cache.Set(ctx, healthProbeKey, []byte("1"), 10*time.Second); err != nil {
		return err
	}
	_, _, err := cache.Get(ctx, healthProbeKey)
	return err
}
