package controllers

import (
	"fmt"
	"net/http"
	"shortsd/internal/providers"
	"shortsd/internal/services"
	"time"
)

type HealthController struct {
	catalog   services.CatalogInterface
	pipeline  services.PipelineServiceInterface
	logger    providers.Logger
	startTime time.Time
}

type healthResponse struct {
	Status          string  `json:"status"`
	Uptime          string  `json:"uptime"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
	Videos          int     `json:"videos"`
	PipelineRunning bool    `json:"pipeline_running"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:          "ok",
		Uptime:          formatDuration(uptime),
		UptimeSeconds:   uptime.Seconds(),
		PipelineRunning: hc.pipeline.Running(),
	}

	code := http.StatusOK
	count, err := hc.catalog.CountVideos(r.Context())
	if err != nil {
		hc.logger.Errorf(providers.TypeGet, "Health check: %s", err)
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	resp.Videos = count

	writeJSON(w, code, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(catalog services.CatalogInterface, pipeline services.PipelineServiceInterface, logger providers.Logger) *HealthController {
	return &HealthController{
		catalog:   catalog,
		pipeline:  pipeline,
		logger:    logger,
		startTime: time.Now(),
	}
}
