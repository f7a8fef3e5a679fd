// Package service composes the integrity engine's operations over the
// record store: sequence verification, duplicate detection,
// cross-referencing, and identity-family linking.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	gazettemetrics "gazette/internal/gazette/metrics"
	"gazette/internal/gazette/store"
	"gazette/internal/person"
	dErrors "gazette/pkg/domain-errors"
	"gazette/pkg/platform/sentinel"
	"gazette/pkg/platform/tx"
)

// StoreTx runs a function inside one store transaction. The SQL
// implementation carries the transaction through context so every store
// call inside fn joins it.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the gazette ingestion integrity engine.
type Service struct {
	records store.RecordStore
	persons person.Store
	logger  *slog.Logger
	metrics *gazettemetrics.Metrics
	tx      StoreTx
}

type serviceConfig struct {
	persons person.Store
	logger  *slog.Logger
	metrics *gazettemetrics.Metrics
	tx      StoreTx
}

type Option func(cfg *serviceConfig)

func WithPersonStore(persons person.Store) Option {
	return func(cfg *serviceConfig) { cfg.persons = persons }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

func WithMetrics(m *gazettemetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func WithTx(t StoreTx) Option {
	return func(cfg *serviceConfig) { cfg.tx = t }
}

// New builds the engine over a record store. Without WithTx the service
// runs writes directly, which suits the in-memory store whose family
// operations are already atomic.
func New(records store.RecordStore, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tx == nil {
		cfg.tx = passthroughTx{}
	}
	return &Service{
		records: records,
		persons: cfg.persons,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		tx:      cfg.tx,
	}
}

// passthroughTx satisfies StoreTx for stores with intrinsic atomicity.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SQLTx implements StoreTx over database/sql, carrying the transaction in
// context for the postgres stores.
type SQLTx struct {
	db *sql.DB
}

func NewSQLTx(db *sql.DB) *SQLTx {
	return &SQLTx{db: db}
}

func (s *SQLTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx.WithTx(ctx, t)); err != nil {
		_ = t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func requireIssueNumber(issueNumber string) error {
	if issueNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "issue number is required")
	}
	return nil
}

// wrapStoreErr translates store sentinels into coded errors. Anything not
// a recognized sentinel is a persistence failure.
func wrapStoreErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, notFoundMsg)
	}
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "record store failure")
}
