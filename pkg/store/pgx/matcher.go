package pgx

import (
	"context"
	"errors"

	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"

	"github.com/argus-intel/argus/backend/pkg/track"

	"github.com/jackc/pgx/v5"
)

// Matcher resolves entity names through the pg_trgm similarity index,
// pushing the fuzzy comparison into the database instead of loading the
// owner's entities into memory.
type Matcher struct {
	queries   *pgdb.Queries
	threshold float64
}

func NewMatcher(store *Store, threshold float64) *Matcher {
	return &Matcher{
		queries:   store.queries,
		threshold: threshold,
	}
}

func (m *Matcher) BestMatch(ctx context.Context, ownerID int64, name string) (track.Match, bool, error) {
	row, err := m.queries.FindSimilarEntity(ctx, pgdb.FindSimilarEntityParams{
		OwnerID:   ownerID,
		NameLower: track.Normalize(name),
		Threshold: m.threshold,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return track.Match{}, false, nil
		}
		return track.Match{}, false, err
	}

	return track.Match{
		Name:      row.Name,
		NameLower: row.NameLower,
		Score:     row.Similarity,
	}, true, nil
}
