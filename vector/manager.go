package vector

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// Manager owns the lifetime of one VectorDB connection.
type Manager struct {
	db  VectorDB
	cfg Config
	log *zap.Logger

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.RWMutex
}

// Open connects through the opener and runs the readiness check once. A
// handle that fails the check is closed before Open returns.
func Open(ctx context.Context, cfg Config, open Opener) (*Manager, error) {
	log := zap.L().With(
		zap.String("component", "vector"),
		zap.String("driver", string(cfg.Driver)),
	)

	if err := CheckEndpoint(cfg); err != nil {
		return nil, err
	}

	db, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	ready, err := db.Ready(ctx)
	if err != nil || !ready {
		if cerr := db.Close(); cerr != nil {
			log.Warn(cerr.Error())
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnection, err)
		}

		return nil, fmt.Errorf("%w at %s", ErrConnection, endpoint(cfg))
	}

	log.Info("connected to vector store",
		zap.String("endpoint", endpoint(cfg)),
		zap.String("collection", cfg.Collection),
	)

	return &Manager{
		db:  db,
		cfg: cfg,
		log: log,
	}, nil
}

// WithStore opens a store, hands it to fn and closes it on every exit path.
func WithStore(ctx context.Context, cfg Config, open Opener, fn func(*Manager) error) (err error) {
	m, err := Open(ctx, cfg, open)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(m)
}

func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) CreateSchema(ctx context.Context, schema Schema) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrStoreClosed
	}

	log := m.log.With(
		zap.String("action", "create_schema"),
		zap.String("collection", schema.Name),
	)

	if err := m.db.CreateSchema(ctx, schema); err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("schema created", zap.Int("properties", len(schema.Properties)))
	return nil
}

func (m *Manager) Collection(ctx context.Context, schema Schema) (Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	return m.db.Collection(ctx, schema)
}

// Close releases the connection. Only the first call reaches the store.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		m.closeErr = m.db.Close()
		if m.closeErr != nil {
			m.log.Error(m.closeErr.Error())
			return
		}

		m.log.Info("vector store connection closed")
	})

	return m.closeErr
}

// CheckEndpoint rejects configs whose auxiliary gRPC host points at a
// different machine than the primary URL.
func CheckEndpoint(cfg Config) error {
	if cfg.URL == "" || cfg.GRPCHost == "" {
		return nil
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigurationMismatch, err)
	}

	grpcHost := cfg.GRPCHost
	if h, _, err := net.SplitHostPort(grpcHost); err == nil {
		grpcHost = h
	}

	if u.Hostname() != grpcHost {
		return fmt.Errorf("%w: url host %q, grpc host %q",
			ErrConfigurationMismatch, u.Hostname(), grpcHost)
	}

	return nil
}

func endpoint(cfg Config) string {
	switch {
	case cfg.URL != "":
		return cfg.URL
	case cfg.Persistent:
		return cfg.Path
	default:
		return "memory"
	}
}
