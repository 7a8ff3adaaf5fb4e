// Package scheduler implements the Dispatch Loop: four independent
// cadences (Motion, Observer, Matcher, Adapter) under one cancellation
// signal, with trigger-driven early runs for Matcher and Adapter and
// drop-not-queue back-pressure when a cadence falls behind.
package scheduler

import (
	"context"
	"sync"
	"time"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/observer"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/store"
)

// MotionRunner advances the simulation by one tick.
type MotionRunner interface {
	Tick(ctx context.Context, dt time.Duration) error
}

// MatchRunner runs one Matcher pass.
type MatchRunner interface {
	Run(ctx context.Context) (int, error)
}

// AdaptRunner runs one Adapter pass.
type AdaptRunner interface {
	Run(ctx context.Context) (int, error)
}

// Scheduler owns the four cadences and the single store writes flow
// through. The store's own lock is what actually serializes writes;
// Matcher and Adapter runs also share one lock in Run, so those two agents
// never race to commit the same vehicle/load pair.
type Scheduler struct {
	store    *store.Store
	motion   MotionRunner
	observer *observer.Observer
	matcher  MatchRunner
	adapter  AdaptRunner
	cfg      config.TickConfig
	log      logging.Logger

	matchEarly chan struct{}
	adaptEarly chan struct{}
}

func New(s *store.Store, motion MotionRunner, obs *observer.Observer, matcher MatchRunner, adapter AdaptRunner, cfg config.TickConfig, log logging.Logger) *Scheduler {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Scheduler{
		store:      s,
		motion:     motion,
		observer:   obs,
		matcher:    matcher,
		adapter:    adapter,
		cfg:        cfg,
		log:        log,
		matchEarly: make(chan struct{}, 1),
		adaptEarly: make(chan struct{}, 1),
	}
}

// Run blocks, driving all four cadences until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup

	// agentMu keeps a Matcher run and an Adapter run from overlapping.
	var agentMu sync.Mutex

	wg.Add(4)
	go s.runMotion(ctx, &wg)
	go s.runObserver(ctx, &wg)
	go s.runCoalesced(ctx, &wg, s.cfg.Matcher(), s.matchEarly, func(c context.Context) {
		agentMu.Lock()
		defer agentMu.Unlock()
		if _, err := s.matcher.Run(c); err != nil {
			s.log.Warnf("scheduler: matcher run failed: %v", err)
		}
	})
	go s.runCoalesced(ctx, &wg, s.cfg.Adapter(), s.adaptEarly, func(c context.Context) {
		agentMu.Lock()
		defer agentMu.Unlock()
		if _, err := s.adapter.Run(c); err != nil {
			s.log.Warnf("scheduler: adapter run failed: %v", err)
		}
	})
	wg.Wait()
}

func (s *Scheduler) runMotion(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	s.loop(ctx, s.cfg.Motion(), func(c context.Context) {
		if err := s.motion.Tick(c, s.cfg.Motion()); err != nil {
			s.log.Warnf("scheduler: motion tick failed: %v", err)
		}
	})
}

func (s *Scheduler) runObserver(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	s.loop(ctx, s.cfg.Observer(), func(c context.Context) {
		snapshot := s.store.Snapshot()
		res := s.observer.Cycle(c, snapshot)

		for _, l := range res.NewLoads {
			if err := s.store.InsertLoad(l); err != nil {
				s.log.Warnf("scheduler: observer new load insert failed: %v", err)
			}
		}
		s.store.ApplyEvents(res.Events)

		for _, trig := range res.Triggers {
			s.dispatchTrigger(trig)
		}
	})
}

// runCoalesced drives a cadence that also accepts trigger-driven early
// runs, collapsing any early-run request that arrives mid-tick into at
// most one pending run rather than queueing it.
func (s *Scheduler) runCoalesced(ctx context.Context, wg *sync.WaitGroup, period time.Duration, early <-chan struct{}, run func(context.Context)) {
	defer wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
		case <-early:
			run(ctx)
		}
	}
}

// loop drives a plain periodic cadence with drain-to-one-pending-tick
// back-pressure: if run takes longer than period, the ticker channel is
// drained so only one tick is ever queued.
func (s *Scheduler) loop(ctx context.Context, period time.Duration, run func(context.Context)) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run(ctx)
			drain(ticker)
		}
	}
}

func drain(t *time.Ticker) {
	select {
	case <-t.C:
	default:
	}
}

// dispatchTrigger routes a trigger to the cadence whose early-run channel
// it should wake, coalescing duplicate triggers within the same tick.
func (s *Scheduler) dispatchTrigger(trig domain.TriggerKind) {
	switch trig {
	case domain.TriggerIdleTimeout, domain.TriggerHighPriorityLoadPosted:
		select {
		case s.matchEarly <- struct{}{}:
		default:
		}
	case domain.TriggerNearDelivery, domain.TriggerTrafficEvent:
		select {
		case s.adaptEarly <- struct{}{}:
		default:
		}
	}
}
