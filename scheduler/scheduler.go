package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-ceremony/clock"
	"github.com/joeycumines/go-ceremony/idgen"
	"github.com/joeycumines/go-ceremony/logging"
	"github.com/joeycumines/go-ceremony/model"
	"github.com/joeycumines/go-ceremony/store"
)

type (
	// Lease is the optional fencing hook §5 delegates to "the external
	// scheduler runtime". A Scheduler with no Lease assumes it is already
	// the sole runner (the default, and correct, assumption for a single
	// process or a single leased cron trigger).
	Lease interface {
		// TryAcquire reports whether the caller may run this tick. It must
		// be safe to call once per tick.
		TryAcquire(ctx context.Context) (bool, error)
	}

	// Config configures a Scheduler. A nil Config, or zero fields, fall
	// back to the documented defaults - the same *Config-may-be-nil
	// convention as microbatch.BatcherConfig and longpoll.ChannelConfig.
	Config struct {
		// TickInterval is how often Tick runs. Defaults to one minute, per
		// §6 ("checkAndRemoveBlockingContributor - every 60 s").
		TickInterval time.Duration
	}

	// Scheduler runs the eviction control loop.
	Scheduler struct {
		Store  store.Store
		Clock  clock.Clock
		IDGen  idgen.Generator
		Logger *logging.Logger
		Lease  Lease

		tickInterval time.Duration

		// Evictions, SkippedCircuits and BatchFailures are plain exported
		// counters rather than a third-party metrics client: no metrics
		// library appears anywhere in the retrieval pack's own code (only
		// in unrelated manifests), so exposing atomics a caller can scrape
		// into whatever they already use is the least invented option.
		Evictions       atomic.Uint64
		SkippedCircuits atomic.Uint64
		BatchFailures   atomic.Uint64
	}
)

// New constructs a Scheduler. logger may be nil.
func New(st store.Store, clk clock.Clock, idGen idgen.Generator, logger *logging.Logger, cfg *Config) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	interval := time.Minute
	if cfg != nil && cfg.TickInterval > 0 {
		interval = cfg.TickInterval
	}
	return &Scheduler{
		Store:        st,
		Clock:        clk,
		IDGen:        idGen,
		Logger:       logger,
		tickInterval: interval,
	}
}

// Run drives Tick on every clock tick, until ctx is canceled.
func (sch *Scheduler) Run(ctx context.Context) error {
	ticker := sch.Clock.NewTicker(sch.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C():
			if sch.Lease != nil {
				ok, err := sch.Lease.TryAcquire(ctx)
				if err != nil {
					sch.Logger.Warning().Err(err).Log(`scheduler: lease acquisition failed, skipping tick`)
					continue
				}
				if !ok {
					continue
				}
			}
			sch.Tick(ctx)
		}
	}
}

// Tick runs one pass of §4.6 over every OPENED, not-yet-ended ceremony.
func (sch *Scheduler) Tick(ctx context.Context) {
	now := sch.Clock.NowMillis()

	ceremonies, err := sch.Store.Query(ctx, model.CeremoniesCollection,
		store.Filter{Field: "state", Op: store.OpEqual, Value: string(model.CeremonyOpened)},
		store.Filter{Field: "endDate", Op: store.OpGreaterOrEqual, Value: now},
	)
	if err != nil {
		sch.Logger.Warning().Err(err).Log(`scheduler: failed to query opened ceremonies`)
		return
	}

	for _, doc := range ceremonies {
		var ceremony model.Ceremony
		if err := store.FromFields(doc.Fields, &ceremony); err != nil {
			sch.Logger.Warning().Err(err).Str(`path`, doc.Path).Log(`scheduler: failed to decode ceremony`)
			continue
		}
		ceremony.ID = lastSegment(doc.Path)

		sch.tickCeremony(ctx, &ceremony, now)
	}
}

func (sch *Scheduler) tickCeremony(ctx context.Context, ceremony *model.Ceremony, now int64) {
	circuits, err := sch.Store.Query(ctx, model.CircuitsCollection(ceremony.ID))
	if err != nil {
		sch.Logger.Warning().Err(err).Str(`ceremonyId`, ceremony.ID).Log(`scheduler: failed to query circuits`)
		return
	}

	for _, doc := range circuits {
		var circuit model.Circuit
		if err := store.FromFields(doc.Fields, &circuit); err != nil {
			sch.Logger.Warning().Err(err).Str(`path`, doc.Path).Log(`scheduler: failed to decode circuit`)
			continue
		}
		circuit.ID = lastSegment(doc.Path)
		circuit.CeremonyID = ceremony.ID

		sch.tickCircuit(ctx, ceremony, &circuit, now)
	}
}

func lastSegment(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	return path[i+1:]
}
