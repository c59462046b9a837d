// Package postgres records relay results in a PostgreSQL table so that operators
// can reconcile deliveries against the source chain.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/spyro-labs/spyro-relayer/core"
)

const writeTimeout = 10 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS relay_results (
	emitter_chain   INTEGER     NOT NULL,
	emitter_address TEXT        NOT NULL,
	sequence        BIGINT      NOT NULL,
	status          TEXT        NOT NULL,
	reason          TEXT        NOT NULL DEFAULT '',
	tx_hash         TEXT        NOT NULL DEFAULT '',
	block_number    BIGINT      NOT NULL DEFAULT 0,
	error           TEXT        NOT NULL DEFAULT '',
	attempts        INTEGER     NOT NULL DEFAULT 0,
	reported_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (emitter_chain, emitter_address, sequence)
)`

const upsertResult = `
INSERT INTO relay_results (
	emitter_chain, emitter_address, sequence, status, reason, tx_hash, block_number, error, attempts, reported_at
) VALUES (
	:emitter_chain, :emitter_address, :sequence, :status, :reason, :tx_hash, :block_number, :error, :attempts, :reported_at
)
ON CONFLICT (emitter_chain, emitter_address, sequence) DO UPDATE SET
	status = EXCLUDED.status,
	reason = EXCLUDED.reason,
	tx_hash = EXCLUDED.tx_hash,
	block_number = EXCLUDED.block_number,
	error = EXCLUDED.error,
	attempts = EXCLUDED.attempts,
	reported_at = EXCLUDED.reported_at`

const selectResult = `
SELECT emitter_chain, emitter_address, sequence, status, reason, tx_hash, block_number, error, attempts, reported_at
FROM relay_results
WHERE emitter_chain = $1 AND emitter_address = $2 AND sequence = $3`

// row is the relay_results representation of a core.RelayResult.
type row struct {
	EmitterChain   int       `db:"emitter_chain"`
	EmitterAddress string    `db:"emitter_address"`
	Sequence       int64     `db:"sequence"`
	Status         string    `db:"status"`
	Reason         string    `db:"reason"`
	TxHash         string    `db:"tx_hash"`
	BlockNumber    int64     `db:"block_number"`
	Error          string    `db:"error"`
	Attempts       int       `db:"attempts"`
	ReportedAt     time.Time `db:"reported_at"`
}

func rowOf(r core.RelayResult) row {
	return row{
		EmitterChain:   int(r.MessageID.EmitterChain),
		EmitterAddress: r.MessageID.EmitterAddress.String(),
		Sequence:       int64(r.MessageID.Sequence),
		Status:         string(r.Status),
		Reason:         string(r.Reason),
		TxHash:         r.TxHash,
		BlockNumber:    int64(r.BlockNumber),
		Error:          r.Error,
		Attempts:       r.Attempts,
		ReportedAt:     r.Timestamp,
	}
}

func (r row) result() (core.RelayResult, error) {
	addr, err := vaa.StringToAddress(r.EmitterAddress)
	if err != nil {
		return core.RelayResult{}, errors.Wrapf(err, "invalid emitter address %q", r.EmitterAddress)
	}
	return core.RelayResult{
		MessageID: core.MessageID{
			EmitterChain:   vaa.ChainID(r.EmitterChain),
			EmitterAddress: addr,
			Sequence:       uint64(r.Sequence),
		},
		Status:      core.Status(r.Status),
		Reason:      core.Reason(r.Reason),
		TxHash:      r.TxHash,
		BlockNumber: uint64(r.BlockNumber),
		Error:       r.Error,
		Attempts:    r.Attempts,
		Timestamp:   r.ReportedAt.UTC(),
	}, nil
}

// Ledger is a core.ResultSink persisting the latest result of every message.
type Ledger struct {
	db *sqlx.DB
}

var _ core.ResultSink = (*Ledger)(nil)

// Open connects to PostgreSQL with a lib/pq data source name.
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to the results ledger")
	}
	return NewLedger(db), nil
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Migrate creates the relay_results table if it does not exist yet.
func (l *Ledger) Migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create relay_results")
	}
	return nil
}

// Report upserts the result. A write failure is logged and otherwise ignored:
// the ledger is for reconciliation and never blocks relaying.
func (l *Ledger) Report(ctx context.Context, result core.RelayResult) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := l.Save(ctx, result); err != nil {
		core.GetMessageLogger(result.MessageID, "store.postgres").Error("failed to record relay result", err)
	}
}

func (l *Ledger) Save(ctx context.Context, result core.RelayResult) error {
	if _, err := l.db.NamedExecContext(ctx, upsertResult, rowOf(result)); err != nil {
		return errors.Wrapf(err, "failed to upsert result of %s", result.MessageID)
	}
	return nil
}

// Get returns the recorded result of a message, and false when there is none.
func (l *Ledger) Get(ctx context.Context, id core.MessageID) (core.RelayResult, bool, error) {
	var r row
	err := l.db.GetContext(ctx, &r, selectResult, int(id.EmitterChain), id.EmitterAddress.String(), int64(id.Sequence))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RelayResult{}, false, nil
	} else if err != nil {
		return core.RelayResult{}, false, errors.Wrapf(err, "failed to query result of %s", id)
	}
	result, err := r.result()
	if err != nil {
		return core.RelayResult{}, false, err
	}
	return result, true, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}
