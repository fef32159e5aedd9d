package main

import (
	"context"
	"database/sql"

	accessservice "credvault/internal/access/service"
	accessstore "credvault/internal/access/store"
	regstore "credvault/internal/registry/store"
	dErrors "credvault/pkg/domain-errors"
)

// accessPostgresTx runs access workflow units in one database transaction.
// The certificate row is share-locked by FindForShare so a concurrent revoke
// serializes behind it; duplicate pending inserts are rejected by the partial
// unique index.
type accessPostgresTx struct {
	db *sql.DB
}

func newAccessPostgresTx(db *sql.DB) *accessPostgresTx {
	return &accessPostgresTx{db: db}
}

func (t *accessPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores accessservice.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, accessservice.DefaultTxTimeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is no-op; error already captured
	}()

	stores := accessservice.Stores{
		Requests:     accessstore.NewPostgresTx(tx),
		Certificates: regstore.NewPostgresTx(tx),
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "failed to commit transaction")
	}
	return nil
}
