package postgresql

import (
	"context"

	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

// GetQuerier returns the transaction carried by the context, or the pool.
// Used in repositories to support both transactional and non-transactional
// operations.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFrom(ctx); ok {
		return tx
	}
	return db.Pool
}
