package db

import (
	"context"
	"time"
)

// Store is the database facade. This subsystem only reads the content store;
// the write surface is limited to the embedding cache.
type Store interface {
	Pinger
	HashReader
	KVStore
	SetReader
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashReader reads hash-based records (synonyms, fragment and document metadata).
type HashReader interface {
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// KVStore provides simple key-value operations (embedding cache).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SetReader reads set membership (curated document allowlists, user access lists).
type SetReader interface {
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Searcher provides query operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchLexical(ctx context.Context, q *LexicalQuery) (*SearchResult, error)
}
