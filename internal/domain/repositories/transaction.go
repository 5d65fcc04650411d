package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager groups multi-statement mutations (move, delete,
// duplicate) into a single transaction on the persistent backend.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
