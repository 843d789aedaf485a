package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	latencyWindowSize = 200
	slowRequest       = 2 * time.Second
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(data []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(data)
	w.bytes += n
	return n, err
}

// Hijack is required for websocket upgrades behind this middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	if w.status == 0 {
		w.status = http.StatusSwitchingProtocols
	}
	return hj.Hijack()
}

// Flush keeps streaming responses (PDF downloads, proxied bodies) working.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ring keeps the most recent latencies for a route.
type ring struct {
	samples []int64
	next    int
}

func (r *ring) push(value int64) {
	if len(r.samples) < latencyWindowSize {
		r.samples = append(r.samples, value)
		return
	}
	r.samples[r.next] = value
	r.next = (r.next + 1) % latencyWindowSize
}

type routeLatencies struct {
	mu     sync.Mutex
	routes map[string]*ring
}

func (l *routeLatencies) observe(route string, ms int64) (p50 int64, p95 int64) {
	l.mu.Lock()
	win, ok := l.routes[route]
	if !ok {
		win = &ring{}
		l.routes[route] = win
	}
	win.push(ms)
	sorted := append([]int64(nil), win.samples...)
	l.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return quantile(sorted, 0.5), quantile(sorted, 0.95)
}

func quantile(sorted []int64, q float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q*float64(len(sorted)) + 0.999999)
	idx--
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func newRouteLatencies() *routeLatencies {
	return &routeLatencies{routes: make(map[string]*ring)}
}

// Telemetry logs one "http_request" entry per request with rolling p50/p95
// per route pattern. Server errors and slow requests log at warn.
func Telemetry(logger *zap.Logger) func(http.Handler) http.Handler {
	latencies := newRouteLatencies()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logger == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			pattern := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				pattern = rc.RoutePattern()
			}
			route := r.Method + " " + pattern
			if pattern == "" {
				route = r.Method + " " + r.URL.Path
			}
			p50, p95 := latencies.observe(route, elapsed.Milliseconds())

			level := zapcore.InfoLevel
			if status >= 500 || elapsed >= slowRequest {
				level = zapcore.WarnLevel
			}
			logger.Log(level, "http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("routePattern", pattern),
				zap.String("requestId", readRequestID(r)),
				zap.Int("status", status),
				zap.Int("bytes", sw.bytes),
				zap.Int64("duration_ms", elapsed.Milliseconds()),
				zap.Int64("p50_ms", p50),
				zap.Int64("p95_ms", p95),
			)
		})
	}
}
