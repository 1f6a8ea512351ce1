// Package server owns the listening socket, spawns one session goroutine per
// accepted connection, and coordinates graceful shutdown: stop accepting,
// drain sessions within a bounded wait, then close the worker pool.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"primecalc/go-server/internal/config"
	"primecalc/go-server/internal/dispatch"
	"primecalc/go-server/internal/metrics"
	"primecalc/go-server/internal/platform/ratelimiter"
	"primecalc/go-server/internal/stats"
)

const (
	// The accept loop re-arms this deadline so a shutdown request is
	// observed within one interval instead of blocking indefinitely.
	acceptPollInterval = 500 * time.Millisecond
	drainTimeout       = 5 * time.Second
	shutdownTimeout    = 5 * time.Second
)

type Server struct {
	cfg        config.Server
	log        *slog.Logger
	stats      *stats.Aggregator
	metrics    *metrics.Metrics
	dispatcher *dispatch.Dispatcher
	limiter    *ratelimiter.Limiter

	ln *net.TCPListener

	clientSeq atomic.Int64

	mu          sync.Mutex
	activeConns map[net.Conn]struct{}
	activeCount int64

	sessions sync.WaitGroup
}

func New(cfg config.Server, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	agg := stats.NewAggregator()
	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
	}
	return &Server{
		cfg:         cfg,
		log:         logger,
		stats:       agg,
		metrics:     m,
		dispatcher:  dispatch.New(cfg.Workers, agg, m),
		limiter:     ratelimiter.New(cfg.RateLimitRPS, cfg.RateLimitBurst),
		activeConns: make(map[net.Conn]struct{}),
	}
}

// Stats exposes the aggregator, mainly for tests and diagnostics.
func (s *Server) Stats() *stats.Aggregator { return s.stats }

// Listen binds the configured address. A bind failure is fatal and
// propagates to the caller.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr(), err)
	}
	s.ln = ln.(*net.TCPListener)
	return nil
}

// Addr reports the bound address; only valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Run binds and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts connections until ctx is cancelled, then drains sessions and
// shuts the worker pool down, waiting for outstanding work.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	defer s.dispatcher.Close()

	var metricsSrv *http.Server
	metricsErr := make(chan error, 1)
	if s.metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		metricsSrv = &http.Server{
			Addr:              s.cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			err := metricsSrv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			metricsErr <- err
		}()
	}

	s.log.Info("server listening",
		"addr", s.ln.Addr().String(),
		"workers", s.cfg.Workers,
		"backlog", s.cfg.Backlog,
	)

accept:
	for {
		select {
		case <-ctx.Done():
			break accept
		default:
		}
		_ = s.ln.SetDeadline(time.Now().Add(acceptPollInterval))
		conn, err := s.ln.Accept()
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				break accept
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}
		s.sessions.Add(1)
		go func() {
			defer s.sessions.Done()
			s.handleConn(ctx, conn)
		}()
	}

	_ = s.ln.Close()
	s.drainSessions()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
		if err := <-metricsErr; err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
	}
	return nil
}

// drainSessions waits for in-flight sessions; past the deadline their
// connections are closed, which unblocks their reads and lets the session
// exit path run.
func (s *Server) drainSessions() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.sessions.Wait()
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		s.log.Warn("drain deadline reached, closing remaining connections")
		s.closeActiveConns()
		<-done
	}
}

func (s *Server) closeActiveConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.activeConns {
		_ = conn.Close()
	}
}

// trackConn maintains the connection set and the active count, mirroring the
// latter into the stats aggregator.
func (s *Server) trackConn(conn net.Conn, delta int64) int64 {
	s.mu.Lock()
	if delta > 0 {
		s.activeConns[conn] = struct{}{}
	} else {
		delete(s.activeConns, conn)
	}
	s.activeCount += delta
	current := s.activeCount
	s.mu.Unlock()
	s.stats.SetActiveClients(current)
	return current
}
