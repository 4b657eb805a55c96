package models

import "time"

// ToolStatus availability of one required tool
type ToolStatus struct {
	Name      string `json:"name" yaml:"name" example:"docker"`
	Available bool   `json:"available" yaml:"available" example:"true"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty" example:"Docker version 27.1.1"`
}

// RuntimeStatus responsiveness of the container runtime
type RuntimeStatus struct {
	Running    bool   `json:"running" yaml:"running"`
	StatusText string `json:"statusText" yaml:"statusText"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	Containers int    `json:"containers" yaml:"containers"`
}

// PortStatus whether a well-known port is free on the host
type PortStatus struct {
	Port      int  `json:"port" yaml:"port" example:"80"`
	Available bool `json:"available" yaml:"available" example:"true"`
}

// DiagnosticReport combined environment diagnostic
// @Description Toolchain, runtime, global health, disk and port checks
type DiagnosticReport struct {
	ID              string           `json:"id" yaml:"id"`
	Timestamp       time.Time        `json:"timestamp" yaml:"timestamp"`
	Toolchain       []ToolStatus     `json:"toolchain" yaml:"toolchain"`
	Runtime         RuntimeStatus    `json:"runtime" yaml:"runtime"`
	Global          *AggregateReport `json:"global" yaml:"global"`
	DiskAvailableMB int64            `json:"diskAvailableMB" yaml:"diskAvailableMB"`
	DiskError       string           `json:"diskError,omitempty" yaml:"diskError,omitempty"`
	Ports           []PortStatus     `json:"ports" yaml:"ports"`
	Recommendations []string         `json:"recommendations" yaml:"recommendations"`
}

// OccupiedPorts ports that are already bound on the host
func (d *DiagnosticReport) OccupiedPorts() []int {
	var out []int
	for _, p := range d.Ports {
		if !p.Available {
			out = append(out, p.Port)
		}
	}
	return out
}
