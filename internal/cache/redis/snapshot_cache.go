package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calebwren/propbot/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	contractsKey   = "propbot:snapshot:contracts"
	linesKeyPrefix = "propbot:snapshot:lines:"
)

// SnapshotCache stores the latest fetched snapshots as JSON values with a
// TTL, so a scan shortly after a fetch reuses the data instead of hitting
// the upstream APIs again. An expired or absent key is domain.ErrNoSnapshot
// and the caller falls back to the CSV snapshot.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

func linesKey(source domain.Source) string {
	return linesKeyPrefix + string(source)
}

// SetContracts caches the contract snapshot for ttl.
func (sc *SnapshotCache) SetContracts(ctx context.Context, contracts []domain.BinaryContract, ttl time.Duration) error {
	b, err := json.Marshal(contracts)
	if err != nil {
		return fmt.Errorf("redis: marshal contracts: %w", err)
	}
	if err := sc.rdb.Set(ctx, contractsKey, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set contracts: %w", err)
	}
	return nil
}

// GetContracts returns the cached contract snapshot, or domain.ErrNoSnapshot
// when none is cached.
func (sc *SnapshotCache) GetContracts(ctx context.Context) ([]domain.BinaryContract, error) {
	b, err := sc.rdb.Get(ctx, contractsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get contracts: %w", err)
	}
	var contracts []domain.BinaryContract
	if err := json.Unmarshal(b, &contracts); err != nil {
		return nil, fmt.Errorf("redis: unmarshal contracts: %w", err)
	}
	return contracts, nil
}

// SetLines caches one source's line snapshot for ttl.
func (sc *SnapshotCache) SetLines(ctx context.Context, source domain.Source, lines []domain.SportsbookLine, ttl time.Duration) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("redis: marshal %s lines: %w", source, err)
	}
	if err := sc.rdb.Set(ctx, linesKey(source), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s lines: %w", source, err)
	}
	return nil
}

// GetLines returns one source's cached lines, or domain.ErrNoSnapshot when
// none are cached.
func (sc *SnapshotCache) GetLines(ctx context.Context, source domain.Source) ([]domain.SportsbookLine, error) {
	b, err := sc.rdb.Get(ctx, linesKey(source)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s lines: %w", source, err)
	}
	var lines []domain.SportsbookLine
	if err := json.Unmarshal(b, &lines); err != nil {
		return nil, fmt.Errorf("redis: unmarshal %s lines: %w", source, err)
	}
	return lines, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
