package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linsalefe/pos-plataform/internal/service"
)

// TxRunner runs the multi-row writes of the assistant (document
// replacement, reply persistence) in one read-committed transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise. fn's error is
// returned unchanged.
func (r *TxRunner) WithTx(ctx context.Context, fn func(repos service.TxRepositories) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(txRepos{tx: tx})
	})
}

type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Chunks() service.ChunkWriter {
	return NewKnowledgeChunkRepositoryWithTx(r.tx)
}

func (r txRepos) Messages() service.MessageWriter {
	return NewMessageRepositoryWithTx(r.tx)
}

func (r txRepos) Summaries() service.SummaryWriter {
	return NewSummaryRepositoryWithTx(r.tx)
}
