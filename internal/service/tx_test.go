package service

import (
	"context"
	"errors"
)

type testTxRepos struct {
	chunks    ChunkWriter
	messages  MessageWriter
	summaries SummaryWriter
}

func (t *testTxRepos) Chunks() ChunkWriter {
	return t.chunks
}

func (t *testTxRepos) Messages() MessageWriter {
	return t.messages
}

func (t *testTxRepos) Summaries() SummaryWriter {
	return t.summaries
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	// rolledBack is set when fn returned an error.
	rolledBack bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if err := fn(t.repos); err != nil {
		t.rolledBack = true
		return err
	}
	return nil
}

var errTxFailed = errors.New("tx failed")
