// Package warmer wires up the cron job that periodically recomputes
// the hottest search queries so their cache entries are renewed before
// the TTL runs out. Repeated popular queries then almost always hit
// the cache.
package warmer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"nexus/search-service/internal/search"
)

// topQueries is how many distinct queries get rewarmed per tick.
const topQueries = 20

// Warmer wraps robfig/cron and tracks per-fingerprint hit counts.
// The HTTP layer reports every executed search through Observe; each
// tick replays the most frequent ones through Engine.Refresh.
type Warmer struct {
	cron   *cron.Cron
	engine *search.Engine
	spec   string // cron spec, e.g. "@every 5m"

	mu   sync.Mutex
	seen map[string]*observation
}

type observation struct {
	query    search.SearchQuery
	page     int
	pageSize int
	hits     int
}

// New creates a Warmer that fires every intervalMinutes minutes.
func New(engine *search.Engine, intervalMinutes int) *Warmer {
	return &Warmer{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		engine: engine,
		spec:   fmt.Sprintf("@every %dm", intervalMinutes),
		seen:   make(map[string]*observation),
	}
}

// Observe records one executed search. Blank-term queries never reach
// the warmer — the engine short-circuits them before any caching.
func (w *Warmer) Observe(q search.SearchQuery, page, pageSize int) {
	key := search.Fingerprint(q, page, pageSize)

	w.mu.Lock()
	defer w.mu.Unlock()
	if obs, ok := w.seen[key]; ok {
		obs.hits++
		return
	}
	w.seen[key] = &observation{query: q, page: page, pageSize: pageSize, hits: 1}
}

// Start registers the warm job and starts the scheduler.
func (w *Warmer) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.spec, func() {
		w.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	w.cron.Start()
	log.Printf("[warmer] Cron started — spec: %s", w.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (w *Warmer) Stop() {
	w.cron.Stop()
	log.Println("[warmer] Cron stopped")
}

// RunOnce re-warms the current top queries and resets the counters so
// the next window reflects fresh traffic.
func (w *Warmer) RunOnce(ctx context.Context) {
	top := w.takeTop(topQueries)
	if len(top) == 0 {
		log.Println("[warmer] No observed queries — nothing to warm")
		return
	}

	log.Printf("[warmer] Warming %d query page(s)", len(top))
	for _, obs := range top {
		if err := w.engine.Refresh(ctx, obs.query, obs.page, obs.pageSize); err != nil {
			log.Printf("[warmer] Refresh error for %q: %v", obs.query.Term, err)
		}
	}
	log.Println("[warmer] Warm cycle complete")
}

// takeTop drains the observation table and returns the n most-hit
// entries, most frequent first.
func (w *Warmer) takeTop(n int) []*observation {
	w.mu.Lock()
	all := make([]*observation, 0, len(w.seen))
	for _, obs := range w.seen {
		all = append(all, obs)
	}
	w.seen = make(map[string]*observation)
	w.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].hits > all[j].hits })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
