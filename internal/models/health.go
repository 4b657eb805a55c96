package models

// HealthResponse liveness response of the status server
// @Description Liveness API response
type HealthResponse struct {
	Version   string  `json:"version" example:"1.0.0" description:"service version"`
	StartTime string  `json:"startTime" example:"2024-01-01T10:00:00Z" description:"start time"`
	Status    string  `json:"status" example:"UP" description:"health status"`
	Uptime    string  `json:"uptime" example:"1h30m45s" description:"uptime"`
	Metrics   Metrics `json:"metrics" description:"key metrics"`
}

// Metrics key counters of the status server
type Metrics struct {
	TotalRequests int64 `json:"totalRequests" example:"1000" description:"total requests"`
	ErrorRequests int64 `json:"errorRequests" example:"5" description:"failed requests"`
	ProbesRun     int64 `json:"probesRun" example:"42" description:"probes run since start"`
}
