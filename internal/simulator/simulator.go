// Package simulator advances orders on a timer, standing in for a real
// kitchen feed. Each tick every active order has a fixed chance of being
// looked at; a selected order moves on once it is old enough.
package simulator

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

// StatusSource is anything that drives order statuses from outside the HTTP
// surface. The simulator and the AMQP feed are interchangeable.
type StatusSource interface {
	Run(ctx context.Context) error
}

type Advancer interface {
	AutoAdvance(ctx context.Context, now time.Time, gate func() bool) ([]models.StatusChange, error)
}

const (
	DefaultInterval = 5 * time.Second
	DefaultChance   = 0.3
)

type Option func(*Simulator)

func WithInterval(d time.Duration) Option {
	return func(s *Simulator) { s.interval = d }
}

// WithChance sets the per-order probability of acting on a tick.
func WithChance(p float64) Option {
	return func(s *Simulator) { s.chance = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) { s.rng = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

type Simulator struct {
	store    Advancer
	interval time.Duration
	chance   float64
	now      func() time.Time
	logger   *slog.Logger

	mu  sync.Mutex // held for a whole tick; also guards rng
	rng *rand.Rand
}

func New(store Advancer, opts ...Option) *Simulator {
	s := &Simulator{
		store:    store,
		interval: DefaultInterval,
		chance:   DefaultChance,
		now:      time.Now,
		logger:   slog.Default(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ticks until ctx is done. A tick always finishes before the next one
// starts; ticks missed while one is running are dropped by the ticker.
func (s *Simulator) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.logger.Info("kitchen simulator started", "interval", s.interval, "chance", s.chance)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("kitchen simulator stopped")
			return nil
		case <-t.C:
			if _, err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("simulator tick failed", "error", err)
			}
		}
	}
}

// Tick runs one evaluation pass over the store.
func (s *Simulator) Tick(ctx context.Context) ([]models.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.store.AutoAdvance(ctx, s.now(), s.gate)
	if err != nil {
		return nil, err
	}
	for _, c := range changes {
		s.logger.Info("order advanced",
			"order_id", c.OrderID, "old_status", c.From, "new_status", c.To)
	}
	return changes, nil
}

func (s *Simulator) gate() bool {
	return s.rng.Float64() < s.chance
}
