package domain

import (
	"context"
	"time"
)

// SnapshotCache shares fetched market data between runs so a scan can reuse a
// recent fetch instead of hammering the upstream APIs.
type SnapshotCache interface {
	SetContracts(ctx context.Context, contracts []BinaryContract, ttl time.Duration) error
	GetContracts(ctx context.Context) ([]BinaryContract, error)
	SetLines(ctx context.Context, source Source, lines []SportsbookLine, ttl time.Duration) error
	GetLines(ctx context.Context, source Source) ([]SportsbookLine, error)
}

// LockManager provides distributed locking so concurrent trade runs cannot
// double-spend against the same ledger.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
