package probe

import (
	"context"
	"fmt"

	"devenv-keeper/internal/models"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
)

// ContainerState runtime state of one container
type ContainerState struct {
	Status string
	Health string
}

// DockerAPI the subset of the Engine API the probes rely on
type DockerAPI interface {
	InspectContainer(ctx context.Context, name string) (ContainerState, error)
	InspectNetwork(ctx context.Context, name string) error
	CountContainers(ctx context.Context) (int, error)
}

// EngineClient DockerAPI backed by the Docker Engine API
type EngineClient struct {
	cli *client.Client
}

/**
 * Connect to the Docker Engine
 * @param {string} host - Engine address, e.g. unix:///var/run/docker.sock
 * @returns {EngineClient} Returns a client negotiating the API version lazily
 */
func NewEngineClient(host string) (*EngineClient, error) {
	opts := []client.Opt{client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &EngineClient{cli: cli}, nil
}

func (e *EngineClient) Close() error {
	return e.cli.Close()
}

func (e *EngineClient) InspectContainer(ctx context.Context, name string) (ContainerState, error) {
	inspect, err := e.cli.ContainerInspect(ctx, name, client.ContainerInspectOptions{})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return ContainerState{}, fmt.Errorf("container %s: %w", name, models.ErrNotFound)
		}
		return ContainerState{}, fmt.Errorf("inspect container %s: %w", name, err)
	}
	return stateOf(inspect.Container), nil
}

func stateOf(inspect container.InspectResponse) ContainerState {
	var st ContainerState
	if inspect.State != nil {
		st.Status = string(inspect.State.Status)
		if inspect.State.Health != nil {
			st.Health = string(inspect.State.Health.Status)
		}
	}
	return st
}

func (e *EngineClient) InspectNetwork(ctx context.Context, name string) error {
	if _, err := e.cli.NetworkInspect(ctx, name, client.NetworkInspectOptions{}); err != nil {
		if errdefs.IsNotFound(err) {
			return fmt.Errorf("network %s: %w", name, models.ErrNotFound)
		}
		return fmt.Errorf("inspect network %s: %w", name, err)
	}
	return nil
}

func (e *EngineClient) CountContainers(ctx context.Context) (int, error) {
	result, err := e.cli.ContainerList(ctx, client.ContainerListOptions{All: true})
	if err != nil {
		return 0, fmt.Errorf("list containers: %w", err)
	}
	return len(result.Items), nil
}

// UnavailableDocker DockerAPI used when no engine client could be created
type UnavailableDocker struct {
	Err error
}

func (u UnavailableDocker) InspectContainer(context.Context, string) (ContainerState, error) {
	return ContainerState{}, u.Err
}

func (u UnavailableDocker) InspectNetwork(context.Context, string) error {
	return u.Err
}

func (u UnavailableDocker) CountContainers(context.Context) (int, error) {
	return 0, u.Err
}
