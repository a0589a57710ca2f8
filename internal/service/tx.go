package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction bounded by timeout. A deadline
// hit anywhere inside the transaction is reported as ErrTimeout and the
// transaction is rolled back.
func runTx(ctx context.Context, db *gorm.DB, timeout time.Duration, fn func(tx *gorm.DB) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	err := db.WithContext(ctx).Transaction(fn)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Detail: "la operacion excedio el tiempo limite", Cause: err}
	}
	return err
}

// isDuplicate reports a unique-index violation. TranslateError covers both
// drivers; the message match catches drivers that don't translate.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
