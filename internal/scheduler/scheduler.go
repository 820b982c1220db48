// Package scheduler fires named jobs at wall-clock instants given by 5-field
// cron expressions in a configured IANA time zone.
//
// Every expression is validated before the cron is armed, so a bad schedule
// fails startup instead of the first fire. Each job runs to completion and
// then rearms; a second fire of the same job while one is still running is
// skipped and logged. Job errors are logged at the job boundary and never
// escalate, so one job's failure cannot disable the other or the process.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

// fieldSet is the standard 5-field grammar (minute hour dom month dow) plus
// the usual @descriptors.
const fieldSet = cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

var parser = cron.NewParser(fieldSet)

// Validate checks a cron expression against the 5-field grammar.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

type Config struct {
	Timezone string // IANA TZ, e.g. "Europe/Berlin"
}

type runState struct {
	mu      sync.Mutex
	running bool
}

type entry struct {
	name  string
	spec  string
	id    cron.EntryID
	job   func(ctx context.Context) error
	state *runState
}

type Service struct {
	log logx.Logger
	loc *time.Location
	c   *cron.Cron

	mu      sync.Mutex
	entries []*entry
	runCtx  context.Context
	started bool
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	tz := strings.TrimSpace(cfg.Timezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return &Service{
		log: log,
		loc: loc,
		c:   cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
	}, nil
}

// Add validates spec and registers job under name. Registration must happen
// before Start; an invalid expression is rejected here, never armed.
func (s *Service) Add(name, spec string, job func(ctx context.Context) error) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("job name required")
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := &entry{name: name, spec: spec, job: job, state: &runState{}}
	e.id = s.c.Schedule(sched, cron.FuncJob(func() { s.run(e) }))
	s.entries = append(s.entries, e)
	return nil
}

// Start arms the cron. Jobs run with ctx; cancelling it aborts in-flight
// HTTP calls.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.runCtx = ctx
	entries := append([]*entry(nil), s.entries...)
	s.mu.Unlock()

	s.c.Start()
	for _, e := range entries {
		s.log.Info("schedule armed",
			logx.String("job", e.name),
			logx.String("spec", e.spec),
			logx.Time("next", s.c.Entry(e.id).Next))
	}
}

// Stop halts the cron and waits for a running fire to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.c.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Service) run(e *entry) {
	e.state.mu.Lock()
	if e.state.running {
		e.state.mu.Unlock()
		s.log.Warn("previous run still in progress; skipping fire", logx.String("job", e.name))
		return
	}
	e.state.running = true
	e.state.mu.Unlock()
	defer func() {
		e.state.mu.Lock()
		e.state.running = false
		e.state.mu.Unlock()
	}()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in scheduled job",
				logx.String("job", e.name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	err := e.job(ctx)
	dur := time.Since(start)
	if err != nil {
		// Swallowed here: the next scheduled fire is the implicit retry.
		s.log.Error("scheduled job failed",
			logx.String("job", e.name),
			logx.Err(err),
			logx.Duration("dur", dur),
			logx.Time("next", s.c.Entry(e.id).Next))
		return
	}
	s.log.Info("scheduled job completed",
		logx.String("job", e.name),
		logx.Duration("dur", dur),
		logx.Time("next", s.c.Entry(e.id).Next))
}
