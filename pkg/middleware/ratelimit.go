package middleware

import (
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JaimeStill/aligner/pkg/handlers"
)

// ErrRateLimited is returned to clients that exceed their request budget.
var ErrRateLimited = errors.New("too many requests, please try again later")

// RateLimitConfig caps each client at Requests per Window.
type RateLimitConfig struct {
	Enabled  bool   `toml:"enabled"`
	Requests int    `toml:"requests"`
	Window   string `toml:"window"`
}

// RateLimitEnv maps rate limit config fields to environment variable names.
type RateLimitEnv struct {
	Enabled  string
	Requests string
	Window   string
}

// WindowDuration returns Window as a time.Duration.
func (c *RateLimitConfig) WindowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Window)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if c.Requests <= 0 {
		c.Requests = 100
	}
	if c.Window == "" {
		c.Window = "15m"
	}

	if env != nil {
		if v, ok := lookup(env.Enabled); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Enabled = b
			}
		}
		if v, ok := lookup(env.Requests); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Requests = n
			}
		}
		if v, ok := lookup(env.Window); ok {
			c.Window = v
		}
	}

	if d, err := time.ParseDuration(c.Window); err != nil || d <= 0 {
		return errors.New("invalid rate_limit window")
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Requests > 0 {
		c.Requests = overlay.Requests
	}
	if overlay.Window != "" {
		c.Window = overlay.Window
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	every    rate.Limit
	burst    int
	window   time.Duration
	lastScan time.Time
}

func (l *limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// idle clients have refilled their bucket and can be forgotten
	if now.Sub(l.lastScan) > l.window {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.window {
				delete(l.clients, k)
			}
		}
		l.lastScan = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.every, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimit returns middleware applying a per-client token bucket keyed by remote IP.
// A client may burst the full budget and refills evenly across the window.
// Passes through when disabled.
func RateLimit(cfg *RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	window := cfg.WindowDuration()
	l := &limiter{
		clients: make(map[string]*client),
		every:   rate.Every(window / time.Duration(max(cfg.Requests, 1))),
		burst:   cfg.Requests,
		window:  window,
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			lim := l.get(clientIP(r), now)

			w.Header().Set("RateLimit-Limit", strconv.Itoa(cfg.Requests))

			if !lim.AllowN(now, 1) {
				wait := time.Duration(float64(time.Second) / float64(l.every))
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				handlers.RespondError(w, logger, http.StatusTooManyRequests, ErrRateLimited)
				return
			}

			w.Header().Set("RateLimit-Remaining", strconv.Itoa(int(lim.TokensAt(now))))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
