package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/time/rate"

	contractx "github.com/bloomcart/commerce-agent/agent/contract"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the response and the request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := hlog.FromRequest(r).With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

// RequestLogging logs one line per request with method, path, status and
// duration.
func RequestLogging(next http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
}

// Recovery converts panics into the standard error envelope so callers never
// see a raw stack trace.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				hlog.FromRequest(r).Error().Interface("panic", rec).Msg("panic recovered")
				writeJSON(w, http.StatusInternalServerError, contractx.AgentResponse{
					Message: "Something went wrong handling your request.",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimit applies a token-bucket limit per client IP. Idle client buckets
// are dropped after cleanupAge.
type RateLimit struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	rps   rate.Limit
	burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const cleanupAge = 3 * time.Minute

func NewRateLimit(rps float64, burst int) *RateLimit {
	return &RateLimit{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (rl *RateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, contractx.AgentResponse{
				Message: "Too many requests. Please slow down.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimit) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > cleanupAge {
			delete(rl.clients, key)
		}
	}

	cl, ok := rl.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// loggerMiddleware seeds every request context with the given logger.
func loggerMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return hlog.NewHandler(logger)
}
