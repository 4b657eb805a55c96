package probe

import (
	"context"
	"errors"
	"time"

	"devenv-keeper/internal/models"
)

// NetworkProbe healthy when the container network exists
type NetworkProbe struct {
	name    string
	network string
	api     DockerAPI
}

func NewNetworkProbe(api DockerAPI, name, network string) *NetworkProbe {
	return &NetworkProbe{name: name, network: network, api: api}
}

func (p *NetworkProbe) Name() string           { return p.name }
func (p *NetworkProbe) Target() string         { return p.network }
func (p *NetworkProbe) Kind() models.ProbeKind { return models.KindNetwork }

func (p *NetworkProbe) Run(ctx context.Context) models.ProbeResult {
	start := time.Now()
	res := models.ProbeResult{Name: p.name, Target: p.network, Kind: models.KindNetwork}

	err := p.api.InspectNetwork(ctx, p.network)
	switch {
	case err == nil:
		res.Healthy = true
		res.Detail = models.DetailExists
	case errors.Is(err, models.ErrNotFound):
		res.Detail = models.DetailNotFound
	default:
		res.Detail = models.DetailUnavailable + ": " + err.Error()
	}
	res.Latency = time.Since(start)
	return res
}
