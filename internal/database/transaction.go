package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// txState is the transaction carried by ctx plus the callbacks waiting for
// it to commit.
type txState struct {
	tx          *gorm.DB
	afterCommit []func()
}

type (
	// Transactor runs fn inside a single database transaction. Repositories
	// called with the ctx passed to fn take part in that transaction.
	Transactor interface {
		Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	}

	transactor struct {
		db *gorm.DB
	}
)

func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// nested calls run in a savepoint so a failure leaves the outer
	// transaction usable
	if parent, ok := ctx.Value(txKey{}).(*txState); ok {
		return parent.tx.Transaction(func(tx *gorm.DB) error {
			state := &txState{tx: tx}
			if err := fn(context.WithValue(ctx, txKey{}, state)); err != nil {
				return err
			}
			parent.afterCommit = append(parent.afterCommit, state.afterCommit...)
			return nil
		})
	}

	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return err
	}
	for _, cb := range state.afterCommit {
		cb()
	}
	return nil
}

// AfterCommit runs fn once the outermost transaction in ctx commits. It is
// dropped on rollback. Without a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}

// Conn returns the transaction carried by ctx, or db bound to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		return state.tx
	}
	return db.WithContext(ctx)
}
