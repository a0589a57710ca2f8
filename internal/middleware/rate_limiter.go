package middleware

import (
	"net/http"
	"sync"
	"time"

	"corralon/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// window tracks request counts for one client within a fixed window.
type window struct {
	count int
	end   time.Time
}

// limiter is a fixed-window counter keyed by client IP.
type limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	clients map[string]*window
	now     func() time.Time
}

func newLimiter(limit int, period time.Duration) *limiter {
	return &limiter{limit: limit, period: period, clients: make(map[string]*window), now: time.Now}
}

// allow counts one request for key and reports whether it fits the window.
func (l *limiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.period)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// purge drops expired windows so idle clients do not accumulate.
func (l *limiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for k, w := range l.clients {
		if now.After(w.end) {
			delete(l.clients, k)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

// RateLimiter rejects with 429 once a client IP exceeds limit requests per period.
func RateLimiter(limit int, period time.Duration) gin.HandlerFunc {
	l := newLimiter(limit, period)
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := l.purge(); n > 0 {
				log.Debug().Int("entries_purged", n).Msg("rate limiter purged")
			}
		}
	}()

	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
