package connectivity

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Dialer is the subset of net.Dialer the prober needs.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober decides online/offline by opening a TCP connection to Target.
type Prober struct {
	Target   string
	Interval time.Duration
	Timeout  time.Duration
	Dialer   Dialer
	Logger   *slog.Logger
}

func NewProber(target string, interval, timeout time.Duration, logger *slog.Logger) *Prober {
	return &Prober{
		Target:   target,
		Interval: interval,
		Timeout:  timeout,
		Dialer:   &net.Dialer{},
		Logger:   logger,
	}
}

// Check reports whether Target accepted a connection within Timeout.
func (p *Prober) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	conn, err := p.Dialer.DialContext(ctx, "tcp", p.Target)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Run feeds monitor until ctx is done. It always returns nil so it can sit
// in an errgroup next to the UI.
func (p *Prober) Run(ctx context.Context, monitor *Monitor) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			online := p.Check(ctx)
			if ctx.Err() != nil {
				return nil
			}
			if online != monitor.Online() && p.Logger != nil {
				p.Logger.Info("connectivity changed", "online", online, "target", p.Target)
			}
			monitor.Set(online)
		}
	}
}
