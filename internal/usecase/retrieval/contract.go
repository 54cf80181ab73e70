package retrieval

import (
	"context"

	"github.com/devmedia-cloud/answerdex/internal/domain/search/result"
	searchrepo "github.com/devmedia-cloud/answerdex/internal/repository/search"
)

// Repository defines the index query contract for both retrievers.
type Repository interface {
	Vector(ctx context.Context, q searchrepo.VectorQuery) ([]result.SearchResult, error)
	Lexical(ctx context.Context, q searchrepo.LexicalQuery) ([]searchrepo.Hit, error)
}

// AllowlistReader reads the curated allowlist and per-user event access.
type AllowlistReader interface {
	CuratedIDs(ctx context.Context) ([]string, error)
	EventAccess(ctx context.Context, userToken string) ([]string, error)
}

// Config holds the retrieval tuning read once at startup.
type Config struct {
	CandidateMultiplier int
	MaxCandidatePool    int
	LexicalScoreCutoff  float64
	VectorScoreCutoff   float64
	AllowedPlatforms    []string
	AttendeeFilter      bool
}
