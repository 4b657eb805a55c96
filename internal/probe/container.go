package probe

import (
	"context"
	"errors"
	"time"

	"devenv-keeper/internal/models"
)

// ContainerProbe healthy when the container runs and its health check, if any, passes
type ContainerProbe struct {
	name string
	id   string
	api  DockerAPI
}

func NewContainerProbe(api DockerAPI, name, container string) *ContainerProbe {
	return &ContainerProbe{name: name, id: container, api: api}
}

func (p *ContainerProbe) Name() string           { return p.name }
func (p *ContainerProbe) Target() string         { return p.id }
func (p *ContainerProbe) Kind() models.ProbeKind { return models.KindContainer }

func (p *ContainerProbe) Run(ctx context.Context) models.ProbeResult {
	start := time.Now()
	res := models.ProbeResult{Name: p.name, Target: p.id, Kind: models.KindContainer}

	st, err := p.api.InspectContainer(ctx, p.id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		res.State = models.DetailNotFound
		res.Health = models.HealthUnknown
		res.Detail = models.DetailNotFound
	case err != nil:
		res.State = models.HealthUnknown
		res.Health = models.HealthUnknown
		res.Detail = models.DetailUnavailable + ": " + err.Error()
	default:
		res.State = st.Status
		res.Health = st.Health
		if st.Health == "" || st.Health == "none" {
			res.Health = models.HealthNone
		}
		res.Healthy = st.Status == "running" && (res.Health == models.HealthNone || st.Health == "healthy")
		res.Detail = st.Status
	}
	res.Latency = time.Since(start)
	return res
}
