package routes

import (
	"github.com/argus-intel/argus/backend/internal/util"
	"github.com/argus-intel/argus/backend/pkg/graph"
	storepgx "github.com/argus-intel/argus/backend/pkg/store/pgx"
	"github.com/argus-intel/argus/backend/pkg/track"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSimilarityThreshold is the minimum trigram similarity for a
// fuzzy entity name lookup to count as a match.
const DefaultSimilarityThreshold = 0.3

func newRegistry(conn *pgxpool.Pool) *track.Registry {
	store := storepgx.NewStore(conn)
	threshold := util.GetEnvNumeric("TRACK_MATCH_THRESHOLD", 0)
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	scanner := track.NewScanner(track.ScannerParams{
		Entities:      store,
		Sources:       store,
		Mentions:      store,
		ContextRadius: int(util.GetEnvNumeric("TRACK_CONTEXT_RADIUS", track.DefaultContextRadius)),
	})
	return track.NewRegistry(track.RegistryParams{
		Entities: store,
		Matcher:  storepgx.NewMatcher(store, threshold),
		Scanner:  scanner,
	})
}

func newAnalyzer(conn *pgxpool.Pool) *graph.Analyzer {
	return graph.NewAnalyzer(graph.AnalyzerParams{
		Reader:      storepgx.NewStore(conn),
		Depth:       int(util.GetEnvNumeric("GRAPH_DEPTH", graph.DefaultDepth)),
		ChunkWindow: int(util.GetEnvNumeric("TRACK_CHUNK_WINDOW", graph.DefaultChunkWindow)),
		Damping:     util.GetEnvNumeric("GRAPH_DAMPING", 0),
		TopCentral:  int(util.GetEnvNumeric("GRAPH_TOP_CENTRAL", 0)),
	})
}
