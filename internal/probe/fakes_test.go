package probe

import (
	"context"
	"sync"
	"time"

	"devenv-keeper/internal/models"
)

// fakeClock advances only when After is called
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

type fakeDocker struct {
	containers map[string]ContainerState
	networks   map[string]bool
	err        error
}

func (f *fakeDocker) InspectContainer(_ context.Context, name string) (ContainerState, error) {
	if f.err != nil {
		return ContainerState{}, f.err
	}
	st, ok := f.containers[name]
	if !ok {
		return ContainerState{}, models.ErrNotFound
	}
	return st, nil
}

func (f *fakeDocker) InspectNetwork(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	if !f.networks[name] {
		return models.ErrNotFound
	}
	return nil
}

func (f *fakeDocker) CountContainers(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.containers), nil
}
