package models

import "time"

// ProbeKind identifies the kind of resource a probe looks at
type ProbeKind string

const (
	KindContainer ProbeKind = "container"
	KindNetwork   ProbeKind = "network"
	KindPort      ProbeKind = "port"
	KindHTTP      ProbeKind = "http"
)

// Detail values shared by the probes
const (
	DetailNotFound          = "not-found"
	DetailOpen              = "open"
	DetailTimeout           = "timeout"
	DetailConnectionRefused = "connection_refused"
	DetailUnavailable       = "unavailable"
	DetailExists            = "exists"
	HealthNone              = "no-health-check"
	HealthUnknown           = "unknown"
)

// ProbeResult outcome of a single probe run
// @Description Result of one container, network, port or http probe
type ProbeResult struct {
	Name       string        `json:"name" yaml:"name" example:"reverse-proxy" description:"display name"`
	Target     string        `json:"target" yaml:"target" example:"global-traefik" description:"probed resource"`
	Kind       ProbeKind     `json:"kind" yaml:"kind" example:"container" description:"probe kind"`
	Healthy    bool          `json:"healthy" yaml:"healthy" example:"true" description:"probe verdict"`
	Detail     string        `json:"detail" yaml:"detail" example:"running" description:"free form detail"`
	State      string        `json:"state,omitempty" yaml:"state,omitempty" example:"running" description:"container state"`
	Health     string        `json:"health,omitempty" yaml:"health,omitempty" example:"healthy" description:"container health"`
	StatusCode int           `json:"statusCode,omitempty" yaml:"statusCode,omitempty" example:"200" description:"http status"`
	Latency    time.Duration `json:"latency" yaml:"latency" description:"time spent probing"`
}

// Label returns the display name, falling back to the target
func (r ProbeResult) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Target
}
