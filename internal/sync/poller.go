package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/nhle/deadline-harvester/internal/harvest"
	"github.com/nhle/deadline-harvester/internal/source"
)

// ErrRunInProgress is returned when a harvest is requested while another
// one is still running.
var ErrRunInProgress = errors.New("harvest already in progress")

// SyncState represents the current state of the poller.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the outcome of the most recent harvest.
type SyncStatus struct {
	SourceType source.SourceType
	State      SyncState
	LastSync   time.Time
	LastResult *harvest.Result
	Error      error
	Interval   time.Duration
}

// Runner performs one harvest of a source.
type Runner interface {
	RunSource(ctx context.Context, src source.Source) (*harvest.Result, error)
}

// DefaultInterval is the time between scheduled harvests.
const DefaultInterval = 6 * time.Hour

// runTimeout is the maximum time allowed for a single harvest.
const runTimeout = 5 * time.Minute

// Poller runs the harvest on a fixed interval and on demand. At most one
// harvest runs at a time.
type Poller struct {
	runner    Runner
	src       source.Source
	scheduler gocron.Scheduler
	job       gocron.Job
	log       logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu      gosync.Mutex
	running bool
	status  SyncStatus
}

// New creates a Poller for src. The schedule starts with Start.
func New(r Runner, src source.Source, interval time.Duration, log logrus.FieldLogger) (*Poller, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		runner:    r,
		src:       src,
		scheduler: scheduler,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		status: SyncStatus{
			SourceType: src.Type(),
			State:      SyncIdle,
			Interval:   interval,
		},
	}, nil
}

// Start registers the interval job, runs it once immediately, and
// starts the scheduler.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.job != nil {
		return nil
	}

	job, err := p.scheduler.NewJob(
		gocron.DurationJob(p.status.Interval),
		gocron.NewTask(p.scheduledRun),
		p.jobOptions(true)...,
	)
	if err != nil {
		return fmt.Errorf("failed to create harvest job: %w", err)
	}
	p.job = job
	p.scheduler.Start()

	p.log.WithField("interval", p.status.Interval.String()).Info("harvest scheduler started")
	return nil
}

func (p *Poller) jobOptions(immediate bool) []gocron.JobOption {
	opts := []gocron.JobOption{
		gocron.WithName("harvest"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	return opts
}

// SetInterval reschedules the job. It takes effect after the next run
// when the scheduler is already started.
func (p *Poller) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("interval must be positive, got %s", d)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if d == p.status.Interval {
		return nil
	}
	p.status.Interval = d
	if p.job == nil {
		return nil
	}

	job, err := p.scheduler.Update(
		p.job.ID(),
		gocron.DurationJob(d),
		gocron.NewTask(p.scheduledRun),
		p.jobOptions(false)...,
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule harvest job: %w", err)
	}
	p.job = job

	p.log.WithField("interval", d.String()).Info("harvest interval changed")
	return nil
}

// Stop cancels any running harvest and shuts the scheduler down.
func (p *Poller) Stop() error {
	p.cancel()
	return p.scheduler.Shutdown()
}

// Trigger runs a harvest now. It returns ErrRunInProgress if one is
// already running.
func (p *Poller) Trigger(ctx context.Context) (*harvest.Result, error) {
	return p.runOnce(ctx)
}

// Status returns a copy of the current status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// NextRun returns when the scheduler will next start a harvest.
func (p *Poller) NextRun() (time.Time, error) {
	p.mu.Lock()
	job := p.job
	p.mu.Unlock()

	if job == nil {
		return time.Time{}, errors.New("scheduler not started")
	}
	return job.NextRun()
}

func (p *Poller) scheduledRun() {
	_, err := p.runOnce(p.ctx)
	if errors.Is(err, ErrRunInProgress) {
		p.log.Debug("scheduled harvest skipped; another run is in progress")
	}
}

// runOnce performs a single harvest while holding the running flag.
func (p *Poller) runOnce(ctx context.Context) (*harvest.Result, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, ErrRunInProgress
	}
	p.running = true
	p.status.State = SyncRunning
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	res, err := p.runner.RunSource(ctx, p.src)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.status.LastResult = res
	p.status.Error = err
	if err != nil {
		p.status.State = SyncError
		if source.IsAuthError(err) {
			p.log.WithError(err).Warn("source rejected credentials; run `deadlines credential set` to update the token")
		}
		return res, err
	}
	p.status.State = SyncIdle
	p.status.LastSync = time.Now()
	return res, nil
}
