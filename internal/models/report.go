package models

import (
	"time"

	"github.com/google/uuid"
)

type ScopeKind string

const (
	ScopeGlobal  ScopeKind = "global"
	ScopeProject ScopeKind = "project"
)

// Scope what an aggregate report covers
type Scope struct {
	Kind ScopeKind `json:"kind" yaml:"kind"`
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

func ProjectScope(name string) Scope {
	return Scope{Kind: ScopeProject, Name: name}
}

func (s Scope) String() string {
	if s.Kind == ScopeProject {
		return "project " + s.Name
	}
	return string(s.Kind)
}

// AggregateReport combined result of one health check invocation
// @Description Ordered probe results with an overall verdict
type AggregateReport struct {
	ID        string        `json:"id" yaml:"id" description:"report id"`
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp" description:"check time"`
	Scope     Scope         `json:"scope" yaml:"scope" description:"global or project"`
	Results   []ProbeResult `json:"results" yaml:"results" description:"probe results in check order"`
	Skipped   []string      `json:"skipped,omitempty" yaml:"skipped,omitempty" description:"checks skipped by policy"`
	Overall   bool          `json:"overall" yaml:"overall" description:"AND over all results"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty" description:"failure reason"`
}

func NewAggregateReport(scope Scope, now time.Time) *AggregateReport {
	return &AggregateReport{
		ID:        uuid.NewString(),
		Timestamp: now,
		Scope:     scope,
		Results:   []ProbeResult{},
	}
}

/**
 * Add a probe result to the report
 * @param {ProbeResult} res - result to add
 * @description
 * - Results are keyed by target: a second result for the same kind and target replaces the first in place
 * - Insertion order is preserved otherwise
 */
func (r *AggregateReport) Add(res ProbeResult) {
	for i := range r.Results {
		if r.Results[i].Kind == res.Kind && r.Results[i].Target == res.Target {
			r.Results[i] = res
			return
		}
	}
	r.Results = append(r.Results, res)
}

// Skip records a check that policy excluded from this report
func (r *AggregateReport) Skip(name string) {
	r.Skipped = append(r.Skipped, name)
}

// Fail records an explicit failure reason as a synthetic unhealthy result
func (r *AggregateReport) Fail(name, target string, kind ProbeKind, reason string) {
	r.Add(ProbeResult{Name: name, Target: target, Kind: kind, Healthy: false, Detail: reason})
	if r.Error == "" {
		r.Error = reason
	}
}

// Get looks up a result by target
func (r *AggregateReport) Get(target string) (ProbeResult, bool) {
	for _, res := range r.Results {
		if res.Target == target {
			return res, true
		}
	}
	return ProbeResult{}, false
}

// ByKind returns the results of one kind in check order
func (r *AggregateReport) ByKind(kinds ...ProbeKind) []ProbeResult {
	var out []ProbeResult
	for _, res := range r.Results {
		for _, k := range kinds {
			if res.Kind == k {
				out = append(out, res)
				break
			}
		}
	}
	return out
}

// Finalize computes Overall as the AND over all results and returns it
func (r *AggregateReport) Finalize() bool {
	overall := true
	for _, res := range r.Results {
		if !res.Healthy {
			overall = false
			break
		}
	}
	r.Overall = overall
	return overall
}

// ProjectStatus one project entry of a full status run
type ProjectStatus struct {
	Name   string           `json:"name" yaml:"name"`
	Dir    string           `json:"dir" yaml:"dir"`
	URL    string           `json:"url,omitempty" yaml:"url,omitempty"`
	Report *AggregateReport `json:"report,omitempty" yaml:"report,omitempty"`
}

// FullStatus global report plus every configured project
// @Description Result of a full environment status run
type FullStatus struct {
	Timestamp       time.Time        `json:"timestamp" yaml:"timestamp"`
	Global          *AggregateReport `json:"global" yaml:"global"`
	Projects        []ProjectStatus  `json:"projects" yaml:"projects"`
	SkippedProjects []string         `json:"skippedProjects,omitempty" yaml:"skippedProjects,omitempty"`
	HealthyProjects int              `json:"healthyProjects" yaml:"healthyProjects"`
	TotalProjects   int              `json:"totalProjects" yaml:"totalProjects"`
}
