package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/redis"
	"github.com/vswdatasolutions/Shuarya-Dhaba/pkg/genai"
)

const maxRecommendations = 3

// ErrStale is returned when the cart changed, or a newer request for the
// same session started, before the recommendations arrived.
var ErrStale = errors.New("recommendations are stale")

type RecommendationService interface {
	Recommend(ctx context.Context, sessionID string) ([]string, error)
}

type pending struct {
	seq    uint64
	cancel context.CancelFunc
}

type recommendationService struct {
	carts   CartService
	gen     genai.Generator
	cache   TempStore
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	seq      uint64
	inflight map[string]pending
}

func NewRecommendationService(carts CartService, gen genai.Generator, cache TempStore, ttl, timeout time.Duration, logger *slog.Logger) RecommendationService {
	if gen == nil {
		gen = genai.Unavailable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &recommendationService{
		carts:    carts,
		gen:      gen,
		cache:    cache,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger,
		inflight: make(map[string]pending),
	}
}

// Recommend suggests up to three dishes to go with the session's cart. It
// yields an empty list rather than an error when nothing can be suggested.
func (s *recommendationService) Recommend(ctx context.Context, sessionID string) ([]string, error) {
	c := s.carts.Cart(sessionID)
	version := c.Version()
	names := c.Names()
	if len(names) == 0 || !genai.Available(s.gen) {
		return []string{}, nil
	}

	key := cacheKey(names)
	var cached []string
	if err := s.cache.GetTempData(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, redis.ErrNotFound) {
		s.logger.Warn("recommendation cache read failed", "error", err)
	}

	ctx, seq, done := s.begin(ctx, sessionID)
	defer done()

	text, err := s.gen.Generate(ctx, recommendationPrompt(names))
	if !s.current(sessionID, seq) {
		return nil, ErrStale
	}
	if err != nil {
		s.logger.Warn("recommendation request failed", "session_id", sessionID, "error", err)
		return []string{}, nil
	}

	recs := parseRecommendations(text, names)
	if err := s.cache.SetTempData(context.WithoutCancel(ctx), key, recs, s.ttl); err != nil {
		s.logger.Warn("recommendation cache write failed", "error", err)
	}
	if c.Version() != version {
		return nil, ErrStale
	}
	return recs, nil
}

// begin registers a request for sessionID, cancelling any earlier one still
// in flight.
func (s *recommendationService) begin(ctx context.Context, sessionID string) (context.Context, uint64, func()) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	s.mu.Lock()
	if prev, ok := s.inflight[sessionID]; ok {
		prev.cancel()
	}
	s.seq++
	seq := s.seq
	s.inflight[sessionID] = pending{seq: seq, cancel: cancel}
	s.mu.Unlock()

	return ctx, seq, func() {
		s.mu.Lock()
		if p, ok := s.inflight[sessionID]; ok && p.seq == seq {
			delete(s.inflight, sessionID)
		}
		s.mu.Unlock()
		cancel()
	}
}

func (s *recommendationService) current(sessionID string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.inflight[sessionID]
	return ok && p.seq == seq
}

func cacheKey(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return "recs:" + strings.ToLower(strings.Join(sorted, "|"))
}

func recommendationPrompt(names []string) string {
	return fmt.Sprintf("Based on these items in a customer's cart: %s, suggest 3 other short item names (comma separated) that would pair well in an Indian Dhaba setting.", strings.Join(names, ", "))
}

// parseRecommendations splits the model's list and drops blanks, duplicates
// and anything already in the cart.
func parseRecommendations(text string, inCart []string) []string {
	seen := make(map[string]bool, len(inCart))
	for _, n := range inCart {
		seen[strings.ToLower(n)] = true
	}
	out := []string{}
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' })
	for _, f := range fields {
		name := strings.TrimLeft(strings.TrimSpace(f), "-*•0123456789.) ")
		name = strings.TrimSpace(strings.Trim(name, ".\"'"))
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, name)
		if len(out) == maxRecommendations {
			break
		}
	}
	return out
}
