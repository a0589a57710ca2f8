// Package repository holds the gorm-backed stores. Methods that take a tx
// run on it when non-nil and on the repository pool otherwise, so services
// can compose several stores inside one transaction.
package repository

import (
	"context"

	"gorm.io/gorm"
)

func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
