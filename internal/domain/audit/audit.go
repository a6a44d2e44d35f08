// Package audit records who did what to which entity. The sink is
// fire-and-forget: callers invoke Record and never depend on its
// outcome.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/medilab/lims/internal/platform/db"
)

// Sink persists audit entries.
type Sink interface {
	Record(ctx context.Context, actorID, action, entityType string, entityID uuid.UUID, metadata map[string]interface{})
}

// pgSink inserts audit entries into the audit_log table. Failures are
// logged and swallowed.
type pgSink struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPGSink(pool *pgxpool.Pool, logger zerolog.Logger) Sink {
	return &pgSink{pool: pool, logger: logger}
}

func (s *pgSink) Record(ctx context.Context, actorID, action, entityType string, entityID uuid.UUID, metadata map[string]interface{}) {
	var metaJSON []byte
	if metadata != nil {
		metaJSON, _ = json.Marshal(metadata)
	}

	var err error
	if tx := db.TxFromContext(ctx); tx != nil {
		_, err = tx.Exec(ctx, insertAuditSQL, uuid.New(), actorID, action, entityType, entityID, metaJSON)
	} else {
		_, err = s.pool.Exec(ctx, insertAuditSQL, uuid.New(), actorID, action, entityType, entityID, metaJSON)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Str("entity_id", entityID.String()).
			Msg("audit record dropped")
	}
}

const insertAuditSQL = `
	INSERT INTO audit_log (id, actor_id, action, entity_type, entity_id, metadata)
	VALUES ($1,$2,$3,$4,$5,$6)`

// logSink writes audit entries to the structured log only, for
// deployments that disable database auditing.
type logSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) Sink {
	return &logSink{logger: logger}
}

func (s *logSink) Record(_ context.Context, actorID, action, entityType string, entityID uuid.UUID, metadata map[string]interface{}) {
	evt := s.logger.Info().
		Str("actor_id", actorID).
		Str("action", action).
		Str("entity_type", entityType).
		Str("entity_id", entityID.String())
	if metadata != nil {
		evt = evt.Interface("metadata", metadata)
	}
	evt.Msg("audit")
}
