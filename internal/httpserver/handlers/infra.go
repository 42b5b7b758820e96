package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	IconsLoaded  *int   `json:"icons_loaded,omitempty"`
	Sessions     *int   `json:"sessions,omitempty"`
	CachedPages  *int   `json:"cached_pages,omitempty"`
	LastReload   string `json:"last_reload,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Impact       string `json:"impact,omitempty"`
	Error        string `json:"error,omitempty"`
	LatencyMS    *int64 `json:"latency_ms,omitempty"`
	UpstreamBase string `json:"upstream,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"api":       checkAPI(r.Context(), d),
			"redis":     checkRedis(r.Context(), d),
			"icons":     iconStatus(d),
			"workspace": sessionStatus(d),
		}

		response := infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineMode(components map[string]componentStatus) string {
	// Without the API nothing can be read or written
	if api, exists := components["api"]; exists && !api.OK {
		return "critical"
	}

	// Redis down = every listing goes to the API
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}

	return "operational"
}

func checkAPI(parent context.Context, d deps.Deps) componentStatus {
	if d.API == nil {
		return componentStatus{OK: false, Error: "client not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, 3*time.Second)
	defer cancel()

	start := time.Now()
	_, err := apiclient.Skills(d.API).List(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return componentStatus{
			OK:           false,
			Impact:       "dashboard-unavailable",
			Error:        apiclient.Message(err),
			UpstreamBase: d.API.BaseURL(),
		}
	}
	return componentStatus{OK: true, LatencyMS: &latency, UpstreamBase: d.API.BaseURL()}
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "page-cache-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "page-cache-disabled",
			Error:  "timeout",
		}
	}

	status := componentStatus{OK: true, Mode: "optimal", Impact: "page-cache-enabled"}
	if d.Pages != nil {
		if paths, err := d.Pages.CachedPaths(ctx); err == nil {
			n := len(paths)
			status.CachedPages = &n
		}
	}
	return status
}

func iconStatus(d deps.Deps) componentStatus {
	n := iconTable(d).Len()
	lastReload := "never"
	if d.IconsLastReload != nil {
		if t := d.IconsLastReload(); !t.IsZero() {
			lastReload = t.Format("2006-01-02 15:04:05")
		}
	}
	mode := "builtin"
	if d.IconReloadTrigger != nil {
		mode = "file"
	}
	return componentStatus{OK: n > 0, IconsLoaded: &n, LastReload: lastReload, Mode: mode}
}

func sessionStatus(d deps.Deps) componentStatus {
	if d.Workspaces == nil {
		return componentStatus{OK: false, Error: "registry not initialized"}
	}
	n := d.Workspaces.Count()
	return componentStatus{OK: true, Sessions: &n}
}
