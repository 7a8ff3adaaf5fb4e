package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/observer"
	"fleet-dispatch-engine/internal/ports"
	"fleet-dispatch-engine/internal/store"
)

type countingMotion struct{ n atomic.Int64 }

func (m *countingMotion) Tick(ctx context.Context, dt time.Duration) error {
	m.n.Add(1)
	return nil
}

type countingRunner struct{ n atomic.Int64 }

func (r *countingRunner) Run(ctx context.Context) (int, error) {
	r.n.Add(1)
	return 0, nil
}

type staticSource struct {
	signals []ports.Signal
}

func (s staticSource) Generate(ctx context.Context, snapshot domain.Snapshot) ([]ports.Signal, error) {
	return s.signals, nil
}

func fastTickCfg() config.TickConfig {
	c := config.TickConfig{MotionPeriodS: 1, ObserverPeriodS: 1, MatcherPeriodS: 1, AdapterPeriodS: 1}
	return c
}

func TestSchedulerRunsAllFourCadencesUntilCancelled(t *testing.T) {
	s := store.New(100, nil)
	motion := &countingMotion{}
	matcher := &countingRunner{}
	adapter := &countingRunner{}
	obsAgent := observer.New(staticSource{}, config.ObserverConfig{IdleTimeoutMinutes: 30, NearDeliveryProgress: 90, HighPriorityRatePerKm: 3}, nil)

	sched := New(s, motion, obsAgent, matcher, adapter, fastTickCfg(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 1200*time.Millisecond)
	defer cancel()
	sched.Run(ctx)

	assert.GreaterOrEqual(t, motion.n.Load(), int64(1))
	assert.GreaterOrEqual(t, matcher.n.Load(), int64(1))
	assert.GreaterOrEqual(t, adapter.n.Load(), int64(1))
}

func TestDispatchTriggerWakesMatcherEarly(t *testing.T) {
	s := store.New(100, nil)
	matcher := &countingRunner{}
	adapter := &countingRunner{}
	obsAgent := observer.New(staticSource{}, config.ObserverConfig{IdleTimeoutMinutes: 30, NearDeliveryProgress: 90, HighPriorityRatePerKm: 3}, nil)

	cfg := config.TickConfig{MotionPeriodS: 60, ObserverPeriodS: 60, MatcherPeriodS: 60, AdapterPeriodS: 60}
	sched := New(s, &countingMotion{}, obsAgent, matcher, adapter, cfg, nil)

	sched.dispatchTrigger(domain.TriggerIdleTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	sched.Run(ctx)

	assert.Equal(t, int64(1), matcher.n.Load())
	assert.Equal(t, int64(0), adapter.n.Load())
}

func TestDispatchTriggerCoalescesDuplicates(t *testing.T) {
	s := store.New(100, nil)
	matcher := &countingRunner{}
	adapter := &countingRunner{}
	obsAgent := observer.New(staticSource{}, config.ObserverConfig{IdleTimeoutMinutes: 30, NearDeliveryProgress: 90, HighPriorityRatePerKm: 3}, nil)

	cfg := config.TickConfig{MotionPeriodS: 60, ObserverPeriodS: 60, MatcherPeriodS: 60, AdapterPeriodS: 60}
	sched := New(s, &countingMotion{}, obsAgent, matcher, adapter, cfg, nil)

	sched.dispatchTrigger(domain.TriggerIdleTimeout)
	sched.dispatchTrigger(domain.TriggerHighPriorityLoadPosted)

	require.Len(t, sched.matchEarly, 1)
}
