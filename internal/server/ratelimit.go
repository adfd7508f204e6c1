package server

import (
	"fmt"
	"maps"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumalyzer/internal/errors"
	"resumalyzer/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// Route costs in model calls. A compare runs two critiques and one judge.
const (
	costSingleCall = 1
	costCompare    = 3
	costStoreRead  = 1 // no model call, but reads still count against the caller
)

// callerIdleTTL is how long an unused caller bucket is kept
const callerIdleTTL = 10 * time.Minute

// CallBudget meters model calls per caller with one token bucket each. Routes
// spend what they cost, so a compare drains three times what a roast does.
type CallBudget struct {
	mu       sync.Mutex
	callers  map[string]*callerBucket
	perSec   rate.Limit
	burst    int
	denied   map[string]int64 // by route pattern
	total    int64
	stop     chan struct{}
	stopOnce sync.Once
	logger   *errors.Logger
}

type callerBucket struct {
	bucket *rate.Limiter
	seen   time.Time
}

// NewCallBudget allows callsPerMin model calls per minute per caller, with up
// to burst calls spent at once.
func NewCallBudget(callsPerMin, burst int, logger *errors.Logger) *CallBudget {
	if burst <= 0 {
		burst = 1
	}
	if logger == nil {
		logger = errors.Discard()
	}

	b := &CallBudget{
		callers: make(map[string]*callerBucket),
		perSec:  rate.Limit(float64(callsPerMin) / 60.0),
		burst:   burst,
		denied:  make(map[string]int64),
		stop:    make(chan struct{}),
		logger:  logger,
	}
	go b.evictLoop(callerIdleTTL)
	return b
}

// Spend takes cost calls from the bucket of key. A cost above the burst is
// capped at the burst, so a full small bucket still admits one compare.
func (b *CallBudget) Spend(key, route string, cost int) bool {
	cost = min(max(cost, 1), b.burst)
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.callers[key]
	if !ok {
		c = &callerBucket{bucket: rate.NewLimiter(b.perSec, b.burst)}
		b.callers[key] = c
	}
	c.seen = now

	if c.bucket.AllowN(now, cost) {
		return true
	}
	b.denied[route]++
	b.total++
	return false
}

// Stats reports the budget settings and denials so far
func (b *CallBudget) Stats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]any{
		"active_callers":   len(b.callers),
		"calls_per_minute": float64(b.perSec) * 60.0,
		"burst_capacity":   b.burst,
		"denied_total":     b.total,
		"denied_by_route":  maps.Clone(b.denied),
	}
}

func (b *CallBudget) evictLoop(ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := b.evictIdle(now, ttl); n > 0 {
				b.logger.Debug("Evicted idle call budgets", "evicted", n)
			}
		case <-b.stop:
			return
		}
	}
}

// evictIdle drops callers not seen within ttl of now and returns how many
func (b *CallBudget) evictIdle(now time.Time, ttl time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := 0
	for key, c := range b.callers {
		if now.Sub(c.seen) > ttl {
			delete(b.callers, key)
			evicted++
		}
	}
	return evicted
}

// Close stops the eviction loop. It is safe to call more than once.
func (b *CallBudget) Close() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// budgetMiddleware charges each request cost model calls against its caller
func (s *Server) budgetMiddleware(cost int) func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.Budget == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" || s.Budget.Spend(key, r.Pattern, cost) {
				next(w, r)
				return
			}

			s.Logger.Info("Rate limit exceeded",
				"route", r.Pattern,
				"cost", cost,
				"client_ip", getClientIP(r))
			s.om.GetMetrics().RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, false,
				attribute.String("route", r.Pattern),
				attribute.Int("cost", cost))
			writeErrorResponse(w, "Rate limit exceeded",
				fmt.Sprintf("This request needs %d model call(s); try again later", cost),
				http.StatusTooManyRequests)
		}
	}
}

// callerKey names the bucket a request spends from, or "" when unmetered
func callerKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP prefers the first valid X-Forwarded-For hop, then X-Real-IP,
// then the connection address.
func getClientIP(r *http.Request) string {
	for hop := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		if hop = strings.TrimSpace(hop); net.ParseIP(hop) != nil {
			return hop
		}
	}
	if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
