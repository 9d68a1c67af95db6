package allocation

import "errors"

var (
	// ErrNotInTransaction возвращается при вызове аллокатора вне транзакции
	ErrNotInTransaction = errors.New("allocation: allocator must run inside a transaction")

	// ErrInternal возвращается при внутренних ошибках аллокатора
	ErrInternal = errors.New("allocation: internal error")
)
