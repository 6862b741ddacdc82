package reconciler

import (
	"sync"
	"time"

	"github.com/cuemby/starhunt/pkg/log"
	"github.com/cuemby/starhunt/pkg/metrics"
	"github.com/cuemby/starhunt/pkg/storage"
	"github.com/rs/zerolog"
)

// State is the part of the hub the reconciler drives
type State interface {
	Sweep() []storage.Eviction
	SyncAll() bool
}

// Config holds the loop intervals
type Config struct {
	SweepInterval time.Duration
	SyncInterval  time.Duration
}

// DefaultConfig returns a 5 minute sweep and a 5 second full sync
func DefaultConfig() Config {
	return Config{
		SweepInterval: 5 * time.Minute,
		SyncInterval:  5 * time.Second,
	}
}

// Reconciler keeps observers converged on the canonical state. It evicts
// stale stars on one timer and pushes the full snapshot on another, so an
// observer that missed a delta catches up within one sync interval.
type Reconciler struct {
	state    State
	cfg      Config
	logger   zerolog.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewReconciler creates a new reconciler
func NewReconciler(state State, cfg Config) *Reconciler {
	return &Reconciler{
		state:  state,
		cfg:    cfg,
		logger: log.WithComponent("reconciler"),
		stopCh: make(chan struct{}),
	}
}

// Start begins the sweep and sync loops
func (r *Reconciler) Start() {
	r.wg.Add(2)
	go r.run(r.cfg.SweepInterval, r.sweep)
	go r.run(r.cfg.SyncInterval, r.sync)

	metrics.RegisterComponent("reconciler", true, "")
	r.logger.Info().
		Dur("sweep_interval", r.cfg.SweepInterval).
		Dur("sync_interval", r.cfg.SyncInterval).
		Msg("Reconciler started")
}

// Stop stops both loops and waits for them to exit
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
	metrics.UpdateComponent("reconciler", false, "stopped")
}

func (r *Reconciler) run(interval time.Duration, tick func()) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tick()
		case <-r.stopCh:
			return
		}
	}
}

// sweep performs one eviction pass
func (r *Reconciler) sweep() {
	timer := metrics.NewTimer()
	evicted := r.state.Sweep()
	timer.ObserveDuration(metrics.SweepDuration)

	if len(evicted) == 0 {
		r.logger.Debug().Msg("Sweep found nothing to evict")
		return
	}
	for _, ev := range evicted {
		starLog := log.WithStar(ev.Identity)
		starLog.Info().
			Str("reason", string(ev.Reason)).
			Time("first_found", ev.Star.FirstFound).
			Time("last_update", ev.Star.LastUpdate).
			Msg("Evicted star")
	}
}

// sync pushes the full snapshot to every observer
func (r *Reconciler) sync() {
	if r.state.SyncAll() {
		r.logger.Debug().Msg("Sent periodic star sync")
	}
}
