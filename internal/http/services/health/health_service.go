// Package health contiene los checks de liveness/readiness.
package health

import (
	"context"
	"sort"
	"time"

	"github.com/dropDatabas3/tenantauth/internal/observability/logger"
)

// Pinger es cualquier dependencia que puede reportar si está disponible.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapta una función a Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`          // ok | fail
	Error  string `json:"error,omitempty"` // el detalle va al log
}

type Report struct {
	Status  string    `json:"status"`
	Version string    `json:"version,omitempty"`
	Time    time.Time `json:"time"`
	Checks  []Check   `json:"checks,omitempty"`
}

func (r Report) OK() bool {
	return r.Status == "ok"
}

type Service interface {
	Live(ctx context.Context) Report
	Ready(ctx context.Context) Report
}

type Deps struct {
	Version string
	Checks  map[string]Pinger
	Timeout time.Duration // por check, default 2s
}

type service struct {
	deps Deps
}

func NewService(d Deps) Service {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &service{deps: d}
}

func (s *service) Live(context.Context) Report {
	return Report{Status: "ok", Version: s.deps.Version, Time: time.Now().UTC()}
}

func (s *service) Ready(ctx context.Context) Report {
	rep := Report{Status: "ok", Version: s.deps.Version, Time: time.Now().UTC()}
	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := s.deps.Checks[name]
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		err := p.Ping(cctx)
		cancel()

		c := Check{Name: name, Status: "ok"}
		if err != nil {
			c.Status = "fail"
			c.Error = "unavailable"
			logger.From(ctx).Warn("readiness check failed", logger.Component(name), logger.Err(err))
			rep.Status = "fail"
		}
		rep.Checks = append(rep.Checks, c)
	}
	return rep
}
