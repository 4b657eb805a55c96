package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"devenv-keeper/internal/models"
)

// DefaultPortTimeout dial budget of a port probe
const DefaultPortTimeout = 5 * time.Second

// Dialer opens TCP connections
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// PortProbe healthy when a TCP connection to host:port succeeds
type PortProbe struct {
	name    string
	host    string
	port    int
	Timeout time.Duration
	Dialer  Dialer
}

func NewPortProbe(name, host string, port int, timeout time.Duration) *PortProbe {
	if timeout <= 0 {
		timeout = DefaultPortTimeout
	}
	return &PortProbe{name: name, host: host, port: port, Timeout: timeout, Dialer: &net.Dialer{}}
}

func (p *PortProbe) Name() string           { return p.name }
func (p *PortProbe) Target() string         { return net.JoinHostPort(p.host, strconv.Itoa(p.port)) }
func (p *PortProbe) Kind() models.ProbeKind { return models.KindPort }
func (p *PortProbe) Port() int              { return p.port }

func (p *PortProbe) Run(ctx context.Context) models.ProbeResult {
	start := time.Now()
	res := models.ProbeResult{Name: p.name, Target: p.Target(), Kind: models.KindPort}

	dialCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	conn, err := p.Dialer.DialContext(dialCtx, "tcp", p.Target())
	if err == nil {
		conn.Close()
		res.Healthy = true
		res.Detail = models.DetailOpen
	} else if isTimeout(err) {
		res.Detail = models.DetailTimeout
	} else {
		res.Detail = models.DetailConnectionRefused
	}
	res.Latency = time.Since(start)
	return res
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, models.ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
