package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/streamlog-backend/internal/transport/errpresenter"
	"github.com/heartmarshall/streamlog-backend/pkg/ctxutil"
)

// callerIdleTTL is how long an unused limiter is kept before eviction.
const callerIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per integration application, or per
// client address for requests without one.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*caller
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

type caller struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter starts a limiter that evicts idle callers every
// sweepInterval. Call Stop on shutdown.
func NewRateLimiter(sweepInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		callers: make(map[string]*caller),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop(sweepInterval)
	return rl
}

// Stop ends the eviction loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit allows each caller a burst of perMinute requests refilled evenly
// over a minute. Rejections carry Retry-After with the wait in seconds.
func (rl *RateLimiter) Limit(perMinute int) Middleware {
	every := rate.Every(time.Minute / time.Duration(perMinute))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := rl.now()
			res := rl.limiter(rateKey(r), every, perMinute, now).ReserveN(now, 1)
			if delay := res.DelayFrom(now); !res.OK() || delay > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				errpresenter.Write(w, http.StatusTooManyRequests, errpresenter.Error{
					Code:      errpresenter.CodeRateLimited,
					Message:   "rate limit exceeded",
					Retryable: true,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(r *http.Request) string {
	if id, ok := ctxutil.ApplicationIDFromCtx(r.Context()); ok {
		return "app:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) limiter(key string, every rate.Limit, burst int, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.callers[key]
	if !ok {
		c = &caller{lim: rate.NewLimiter(every, burst)}
		rl.callers[key] = c
	}
	c.seen = now
	return c.lim
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.callers {
		if now.Sub(c.seen) > callerIdleTTL {
			delete(rl.callers, key)
		}
	}
}

func (rl *RateLimiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep(rl.now())
		}
	}
}
