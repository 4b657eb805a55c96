package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"devenv-keeper/internal/config"
	"devenv-keeper/internal/models"
	"devenv-keeper/internal/probe"
	"devenv-keeper/internal/utils"
)

type rule struct {
	prefix string
	out    string
	err    error
}

// fakeRunner answers commands by prefix of their command line and records every call
type fakeRunner struct {
	mu    sync.Mutex
	rules []rule
	calls []utils.Command
}

func (f *fakeRunner) on(prefix, out string, err error) *fakeRunner {
	f.rules = append(f.rules, rule{prefix: prefix, out: out, err: err})
	return f
}

func (f *fakeRunner) Run(_ context.Context, cmd utils.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	line := cmd.String()
	for _, r := range f.rules {
		if strings.HasPrefix(line, r.prefix) {
			return r.out, r.err
		}
	}
	return "", nil
}

func (f *fakeRunner) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}

func commandFailed(cmd string) error {
	return &models.CommandError{Command: cmd, ExitCode: 1, Err: errors.New("exit status 1")}
}

type fakeDocker struct {
	containers map[string]probe.ContainerState
	networks   map[string]bool
	listErr    error
}

func (f *fakeDocker) InspectContainer(_ context.Context, name string) (probe.ContainerState, error) {
	st, ok := f.containers[name]
	if !ok {
		return probe.ContainerState{}, models.ErrNotFound
	}
	return st, nil
}

func (f *fakeDocker) InspectNetwork(_ context.Context, name string) error {
	if !f.networks[name] {
		return models.ErrNotFound
	}
	return nil
}

func (f *fakeDocker) CountContainers(context.Context) (int, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	return len(f.containers), nil
}

func healthyDocker(cfg *config.AppConfig) *fakeDocker {
	return &fakeDocker{
		containers: map[string]probe.ContainerState{
			cfg.Global.ProxyContainer:    {Status: "running", Health: "healthy"},
			cfg.Global.DatabaseContainer: {Status: "running", Health: "healthy"},
			cfg.Global.AdminContainer:    {Status: "running"},
		},
		networks: map[string]bool{cfg.Global.ProxyNetwork: true, cfg.Global.PublicNetwork: true},
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

// statusDoer answers HEAD requests by URL without any network
type statusDoer map[string]int

func (d statusDoer) Do(req *http.Request) (*http.Response, error) {
	code, ok := d[req.URL.String()]
	if !ok {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return &http.Response{StatusCode: code, Body: http.NoBody, Request: req}, nil
}

// openPort a listening TCP port closed at test end
func openPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

// closedPort a port nothing listens on
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := config.Default()
	root := t.TempDir()
	cfg.Paths.GlobalDir = filepath.Join(root, "global")
	cfg.Paths.SitesDir = filepath.Join(root, "sites")
	cfg.Paths.BackupDir = filepath.Join(cfg.Paths.GlobalDir, "backups")
	cfg.Paths.EnvFile = filepath.Join(cfg.Paths.GlobalDir, ".env")
	cfg.Global.DatabaseHost = "127.0.0.1"
	cfg.Global.DatabasePort = openPort(t)
	cfg.Probe.PortTimeout = 1
	cfg.Probe.HTTPTimeout = 3
	return cfg
}

func probeRunning() probe.ContainerState {
	return probe.ContainerState{Status: "running"}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
