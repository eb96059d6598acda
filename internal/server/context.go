package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/calendar-assistant/internal/calendar"
	"github.com/teemow/calendar-assistant/internal/instrumentation"
)

// ErrShutdown is returned by CalendarService after Shutdown.
var ErrShutdown = errors.New("server is shutting down")

// ServiceFactory builds the calendar service on first use.
type ServiceFactory func(ctx context.Context) (calendar.EventService, error)

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx     context.Context
	cancel  context.CancelFunc
	factory ServiceFactory
	service calendar.EventService

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger

	// initMu serializes service construction so concurrent first calls
	// build the client once.
	initMu   sync.Mutex
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context whose calendar service is built
// by factory on first use and reused afterwards. A failed build is not
// cached; the next call tries again.
func NewServerContext(ctx context.Context, factory ServiceFactory) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		factory: factory,
		logger:  slog.Default(),
	}
}

// NewServerContextWithService creates a server context around an existing service.
func NewServerContextWithService(ctx context.Context, svc calendar.EventService) *ServerContext {
	sc := NewServerContext(ctx, nil)
	sc.service = svc
	return sc
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// CalendarService returns the calendar service, building it on first use.
func (sc *ServerContext) CalendarService(ctx context.Context) (calendar.EventService, error) {
	if sc.IsShutdown() {
		return nil, ErrShutdown
	}

	sc.mu.RLock()
	svc := sc.service
	sc.mu.RUnlock()
	if svc != nil {
		return svc, nil
	}

	sc.initMu.Lock()
	defer sc.initMu.Unlock()

	sc.mu.RLock()
	svc = sc.service
	sc.mu.RUnlock()
	if svc != nil {
		return svc, nil
	}

	if sc.factory == nil {
		return nil, errors.New("no calendar service configured")
	}

	svc, err := sc.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}

	sc.mu.Lock()
	sc.service = svc
	sc.mu.Unlock()

	sc.Logger().Debug("calendar client initialized")
	return svc, nil
}

// Metrics returns the metrics recorder. It may be nil; a nil recorder is a no-op.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// SetLogger sets the server logger. A nil logger is ignored.
func (sc *ServerContext) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.logger = logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
