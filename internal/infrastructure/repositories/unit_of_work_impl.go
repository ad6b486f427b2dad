package repositories

import (
	"context"
	"fmt"

	domainRepos "blood-donate.backend/internal/domain/repositories"
	"gorm.io/gorm"
)

type contextKey string

const (
	txKey contextKey = "tx_db"
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// Do executes fn inside a transaction. A transaction already present in ctx is reused.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := commitTx(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDB returns the transaction bound to ctx, or the base handle.
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB is the package helper repositories use to join an open transaction.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
