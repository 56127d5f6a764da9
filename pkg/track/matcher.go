package track

import (
	"context"

	"github.com/agnivade/levenshtein"
)

// Match is a candidate entity name together with its similarity to the
// queried name, on a 0-1 scale.
type Match struct {
	Name      string
	NameLower string
	Score     float64
}

// NameMatcher resolves a name to the best matching tracked entity name
// strictly above a similarity threshold. It exists so that the matching
// backend can be swapped: the in-memory trigram matcher below, a SQL
// trigram index, or an external search service.
//
// Fuzzy matching is lossy: two distinct but similar entity names can be
// conflated. The threshold must stay tunable for that reason.
type NameMatcher interface {
	BestMatch(ctx context.Context, ownerID int64, name string) (Match, bool, error)
}

// TrigramMatcher matches names by trigram-set similarity over the
// owner's registered entities, held entirely in memory. Ties on the
// trigram score are broken by edit distance.
type TrigramMatcher struct {
	entities  EntityStore
	threshold float64
}

// TrigramMatcherParams configures a TrigramMatcher.
type TrigramMatcherParams struct {
	Entities  EntityStore
	Threshold float64
}

func NewTrigramMatcher(params TrigramMatcherParams) *TrigramMatcher {
	return &TrigramMatcher{
		entities:  params.Entities,
		threshold: params.Threshold,
	}
}

func (m *TrigramMatcher) BestMatch(ctx context.Context, ownerID int64, name string) (Match, bool, error) {
	candidates, err := m.entities.ListEntities(ctx, ownerID)
	if err != nil {
		return Match{}, false, err
	}

	query := Normalize(name)
	best := Match{}
	bestDistance := 0
	found := false

	for _, candidate := range candidates {
		score := TrigramSimilarity(query, candidate.NameLower)
		if score <= m.threshold {
			continue
		}
		distance := levenshtein.ComputeDistance(query, candidate.NameLower)
		if !found || score > best.Score || (score == best.Score && distance < bestDistance) {
			best = Match{
				Name:      candidate.Name,
				NameLower: candidate.NameLower,
				Score:     score,
			}
			bestDistance = distance
			found = true
		}
	}

	return best, found, nil
}

// TrigramSimilarity computes the trigram-set similarity of two strings
// on a 0-1 scale: shared trigrams over the union of both trigram sets.
// Strings are padded with two leading and one trailing space so that
// word boundaries contribute trigrams, matching Postgres pg_trgm.
func TrigramSimilarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}

	shared := 0
	for gram := range ta {
		if _, ok := tb[gram]; ok {
			shared++
		}
	}

	union := len(ta) + len(tb) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	grams := make(map[string]struct{})
	if s == "" {
		return grams
	}

	padded := []rune("  " + s + " ")
	for i := 0; i+3 <= len(padded); i++ {
		grams[string(padded[i:i+3])] = struct{}{}
	}
	return grams
}
