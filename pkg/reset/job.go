package reset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clubbrunch/brunch/internal/config"
	"github.com/clubbrunch/brunch/internal/event_bus"
	"github.com/clubbrunch/brunch/internal/utils"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// EventConcluder advances the schedule once an event has ended.
type EventConcluder interface {
	ShouldResetNow(ctx context.Context) (bool, error)
	ConcludeEvent(ctx context.Context, conclude func(ctx context.Context, eventDate time.Time) error) (bool, error)
}

// Archiver moves the registrations of a concluded event out of the way.
type Archiver interface {
	ArchiveAndClear(ctx context.Context, eventDate time.Time) (int, error)
}

// Job polls for the end of the current event and resets the sign-up list for the next one.
// After a reset, polling pauses for the configured duration.
type Job struct {
	mu          sync.Mutex
	concluder   EventConcluder
	archiver    Archiver
	bus         *event_bus.EventBus
	clock       utils.Clock
	spec        string
	pause       time.Duration
	pausedUntil time.Time
	cron        *cron.Cron
}

func NewJob(cfg config.Reset, loc *time.Location, concluder EventConcluder, archiver Archiver, bus *event_bus.EventBus, clock utils.Clock) *Job {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Job{
		concluder: concluder,
		archiver:  archiver,
		bus:       bus,
		clock:     clock,
		spec:      cfg.Spec,
		pause:     cfg.Pause,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start schedules the job and starts the cron runner in the background.
func (j *Job) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		if _, err := j.Run(context.Background()); err != nil {
			log.Errorf("reset job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reset schedule %q: %w", j.spec, err)
	}
	j.cron.Start()
	log.Infof("Reset job scheduled (%s)", j.spec)
	return nil
}

// Stop stops scheduling and waits for a running tick to finish or ctx to expire.
func (j *Job) Stop(ctx context.Context) error {
	done := j.cron.Stop().Done()
	select {
	case <-done:
		log.Info("Reset job stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run performs a single poll and reports whether the event was concluded.
func (j *Job) Run(ctx context.Context) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.clock.Now()
	if now.Before(j.pausedUntil) {
		log.Tracef("reset job paused until %s", j.pausedUntil)
		return false, nil
	}

	due, err := j.concluder.ShouldResetNow(ctx)
	if err != nil {
		return false, err
	}
	if !due {
		return false, nil
	}

	var archived int
	var concludedDate time.Time
	concluded, err := j.concluder.ConcludeEvent(ctx, func(ctx context.Context, eventDate time.Time) error {
		n, err := j.archiver.ArchiveAndClear(ctx, eventDate)
		archived = n
		concludedDate = eventDate
		return err
	})
	if err != nil {
		return concluded, err
	}
	if !concluded {
		return false, nil
	}

	j.pausedUntil = now.Add(j.pause)
	log.Infof("Registrations reset, %d archived. Next check after %s", archived, j.pausedUntil.Format(time.DateTime))

	if j.bus != nil {
		err := j.bus.Publish(event_bus.NewEvent(ctx, event_bus.EventConcludedType, event_bus.EventConcluded{
			EventDate: concludedDate,
			Archived:  archived,
		}))
		if err != nil {
			log.Warnf("failed to publish %s: %v", event_bus.EventConcludedType, err)
		}
	}
	return true, nil
}
