// Package ledger records every accepted generation request in Postgres. It tracks
// what was submitted, not whether the worker finished.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"vto/internal/dispatch"
	"vto/internal/infra"
	"vto/internal/sqlinline"
)

type Ledger struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
}

func New(sql infra.SQLExecutor, logger *zerolog.Logger) *Ledger {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Ledger{sql: sql, logger: l}
}

// EnsureSchema creates the ledger table when it is missing.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.sql == nil {
		return errors.New("ledger: no database configured")
	}
	if _, err := l.sql.Exec(ctx, sqlinline.QEnsureDispatchRequests); err != nil {
		return fmt.Errorf("ledger: ensure schema: %w", err)
	}
	return nil
}

// Record stores one row per accepted request.
func (l *Ledger) Record(ctx context.Context, req dispatch.GenerationRequest, out dispatch.Outcome) error {
	if l == nil || l.sql == nil {
		return nil
	}
	names, err := json.Marshal(out.OutputNames)
	if err != nil {
		return fmt.Errorf("ledger: encode object names: %w", err)
	}
	var modelID string
	if req.Params != nil {
		modelID = req.Params.Fields().ModelID
	}

	var id int64
	err = l.sql.QueryRow(ctx, sqlinline.QInsertDispatchRequest,
		req.RequestID,
		string(req.Operation()),
		req.GroupID,
		req.UserID,
		modelID,
		req.Locale,
		req.Country,
		out.Units,
		out.Submitted,
		out.Failed,
		out.Skipped,
		names,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	l.logger.Debug().Int64("ledger_id", id).Str("request_id", req.RequestID).Msg("dispatch recorded")
	return nil
}

var _ dispatch.Recorder = (*Ledger)(nil)
