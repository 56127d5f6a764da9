package graph

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"
)

// DefaultChunkWindow is the maximum chunk-index distance at which two
// mentions in the same source still count as co-occurring.
const DefaultChunkWindow = 1

// CoMention is a mention of some other entity that shares a source with
// the analyzed entity, joined with the entity's name and the source's
// public identity.
type CoMention struct {
	EntityID       int64
	EntityName     string
	DocumentID     *int64
	ArticleID      *int64
	ChunkID        string
	Context        string
	SourcePublicID string
	SourceLabel    string
}

// MentionReader supplies the mention data relationship analysis runs
// on. EntityMentions returns every stored mention of one entity;
// CoMentions returns the mentions of all other entities that share at
// least one source with it.
type MentionReader interface {
	EntityMentions(ctx context.Context, ownerID int64, entityID int64) ([]common.Mention, error)
	CoMentions(ctx context.Context, ownerID int64, entityID int64) ([]CoMention, error)
}

// Analyzer builds relationship networks around a tracked entity from
// stored mentions. All graph state is per call.
type Analyzer struct {
	reader      MentionReader
	log         logger.LoggerInstance
	depth       int
	damping     float64
	topCentral  int
	chunkWindow int
}

// AnalyzerParams configures an Analyzer. Zero values fall back to the
// package defaults.
type AnalyzerParams struct {
	Reader      MentionReader
	Logger      logger.LoggerInstance
	Depth       int
	Damping     float64
	TopCentral  int
	ChunkWindow int
}

func NewAnalyzer(params AnalyzerParams) *Analyzer {
	log := params.Logger
	if log == nil {
		log = logger.Default()
	}
	depth := params.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	damping := params.Damping
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	topCentral := params.TopCentral
	if topCentral <= 0 {
		topCentral = DefaultTopCentral
	}
	chunkWindow := params.ChunkWindow
	if chunkWindow <= 0 {
		chunkWindow = DefaultChunkWindow
	}
	return &Analyzer{
		reader:      params.Reader,
		log:         log,
		depth:       depth,
		damping:     damping,
		topCentral:  topCentral,
		chunkWindow: chunkWindow,
	}
}

// Network builds the relationship network around the given entity up to
// depth hops. An entity with no mentions or no co-occurrences yields an
// empty network, never an error. A failure while scoring one candidate
// drops that edge and is logged; only failures on the center entity
// itself abort the query.
func (a *Analyzer) Network(ctx context.Context, ownerID int64, entity common.Entity, depth int) (common.RelationshipNetwork, error) {
	if depth <= 0 {
		depth = a.depth
	}

	centerMentions, err := a.reader.EntityMentions(ctx, ownerID, entity.ID)
	if err != nil {
		return common.RelationshipNetwork{}, fmt.Errorf("failed to load mentions: %w", err)
	}
	if len(centerMentions) == 0 {
		return common.EmptyNetwork(), nil
	}

	g := New()
	g.AddNode(entity.Name)

	mentionsByEntity := map[int64][]common.Mention{entity.ID: centerMentions}
	names := map[int64]string{entity.ID: entity.Name}
	visited := map[int64]bool{entity.ID: true}
	frontier := []int64{entity.ID}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []int64
		for _, id := range frontier {
			coMentions, err := a.reader.CoMentions(ctx, ownerID, id)
			if err != nil {
				if id == entity.ID {
					return common.RelationshipNetwork{}, fmt.Errorf("failed to load co-occurrences: %w", err)
				}
				a.log.Warn("Skipping co-occurrence expansion for entity", "entity", names[id], "err", err)
				continue
			}

			candidates := make(map[int64]string)
			for _, co := range coMentions {
				candidates[co.EntityID] = co.EntityName
			}

			candidateIDs := make([]int64, 0, len(candidates))
			for candID := range candidates {
				candidateIDs = append(candidateIDs, candID)
			}
			sort.Slice(candidateIDs, func(i, j int) bool { return candidateIDs[i] < candidateIDs[j] })

			for _, candID := range candidateIDs {
				candMentions, ok := mentionsByEntity[candID]
				if !ok {
					candMentions, err = a.reader.EntityMentions(ctx, ownerID, candID)
					if err != nil {
						a.log.Warn("Skipping relationship candidate", "entity", candidates[candID], "err", err)
						continue
					}
					mentionsByEntity[candID] = candMentions
				}

				strength, contexts := a.score(mentionsByEntity[id], candMentions)
				if len(contexts) == 0 {
					continue
				}
				g.AddEdge(names[id], candidates[candID], strength, contexts)

				if !visited[candID] {
					visited[candID] = true
					names[candID] = candidates[candID]
					next = append(next, candID)
				}
			}
		}
		frontier = next
	}

	if !g.HasEdges(entity.Name) {
		return common.EmptyNetwork(), nil
	}

	return a.assemble(g, entity.Name, depth), nil
}

// Contexts returns the co-occurrence evidence linking two entities: one
// combined context per qualifying mention pair, tagged with the shared
// source.
func (a *Analyzer) Contexts(ctx context.Context, ownerID int64, target common.Entity, otherID int64) ([]common.CoOccurrenceContext, error) {
	mentions, err := a.reader.EntityMentions(ctx, ownerID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions: %w", err)
	}
	coMentions, err := a.reader.CoMentions(ctx, ownerID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load co-occurrences: %w", err)
	}

	var contexts []common.CoOccurrenceContext
	for _, mention := range mentions {
		for _, co := range coMentions {
			if co.EntityID != otherID {
				continue
			}
			if !sameSource(mention.DocumentID, mention.ArticleID, co.DocumentID, co.ArticleID) {
				continue
			}
			if !a.chunksNearby(mention.ChunkID, co.ChunkID) {
				continue
			}
			contexts = append(contexts, common.CoOccurrenceContext{
				SourceID:    co.SourcePublicID,
				Context:     combineContexts(mention.Context, co.Context),
				SourceLabel: co.SourceLabel,
			})
		}
	}
	return contexts, nil
}

// score computes the relationship strength between two entities from
// their full mention sets, together with the combined contexts of the
// qualifying mention pairs. Strength blends document-set overlap,
// shared-document frequency and pairwise mention frequency; a zero
// denominator zeroes that signal's contribution. The result is
// symmetric in its arguments and clamped to [0,1].
func (a *Analyzer) score(mentionsA, mentionsB []common.Mention) (float64, []string) {
	docsA := sourceSet(mentionsA)
	docsB := sourceSet(mentionsB)

	shared := 0
	for key := range docsA {
		if _, ok := docsB[key]; ok {
			shared++
		}
	}
	union := len(docsA) + len(docsB) - shared

	var contexts []string
	for _, ma := range mentionsA {
		for _, mb := range mentionsB {
			if ma.SourceKey() == "" || ma.SourceKey() != mb.SourceKey() {
				continue
			}
			if !a.chunksNearby(ma.ChunkID, mb.ChunkID) {
				continue
			}
			contexts = append(contexts, combineContexts(ma.Context, mb.Context))
		}
	}

	jaccard := 0.0
	if union > 0 {
		jaccard = float64(shared) / float64(union)
	}

	docFrequency := 0.0
	if maxDocs := max(len(docsA), len(docsB)); maxDocs > 0 {
		docFrequency = float64(shared) / float64(maxDocs)
	}

	mentionFrequency := 0.0
	if minMentions := min(len(mentionsA), len(mentionsB)); minMentions > 0 {
		mentionFrequency = float64(len(contexts)) / float64(minMentions)
	}

	strength := 0.3*jaccard + 0.3*docFrequency + 0.4*mentionFrequency
	if strength > 1 {
		strength = 1
	}
	if strength < 0 {
		strength = 0
	}
	return strength, contexts
}

func (a *Analyzer) assemble(g Graph, center string, depth int) common.RelationshipNetwork {
	distances, edges := g.Subgraph(center, depth)

	nodeNames := make([]string, 0, len(distances))
	for name := range distances {
		nodeNames = append(nodeNames, name)
	}
	sort.Strings(nodeNames)

	scores := PageRank(nodeNames, edges, a.damping)

	maxWeight := 0.0
	for _, edge := range edges {
		if edge.Weight > maxWeight {
			maxWeight = edge.Weight
		}
	}

	network := common.EmptyNetwork()
	for _, name := range nodeNames {
		network.Nodes = append(network.Nodes, common.GraphNode{
			ID:    name,
			Score: scores[name],
			Depth: distances[name],
		})
	}

	for _, edge := range edges {
		weight := edge.Weight
		if maxWeight > 0 {
			weight = edge.Weight / maxWeight
		}
		sampled := make([]common.EdgeContext, 0, len(edge.Contexts))
		for _, context := range edge.Contexts {
			sampled = append(sampled, common.EdgeContext{Context: context})
		}
		network.Edges = append(network.Edges, common.GraphEdge{
			Source:   edge.Source,
			Target:   edge.Target,
			Weight:   weight,
			Value:    weight,
			Contexts: sampled,
		})
	}

	ranked := make([]common.CentralEntity, 0, len(nodeNames))
	for _, name := range nodeNames {
		ranked = append(ranked, common.CentralEntity{Name: name, Score: scores[name]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > a.topCentral {
		ranked = ranked[:a.topCentral]
	}
	network.CentralEntities = ranked

	return network
}

// chunksNearby reports whether two chunk ids of the same source are
// identical or share a prefix with numeric suffixes differing by at
// most the adjacency window.
func (a *Analyzer) chunksNearby(chunkA, chunkB string) bool {
	if chunkA == chunkB {
		return true
	}
	prefixA, indexA, okA := splitChunkID(chunkA)
	prefixB, indexB, okB := splitChunkID(chunkB)
	if !okA || !okB || prefixA != prefixB {
		return false
	}
	delta := indexA - indexB
	if delta < 0 {
		delta = -delta
	}
	return delta <= a.chunkWindow
}

func splitChunkID(chunkID string) (string, int, bool) {
	idx := strings.LastIndex(chunkID, "_")
	if idx < 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(chunkID[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return chunkID[:idx], index, true
}

func combineContexts(a, b string) string {
	return a + " ... " + b
}

func sameSource(docA, artA, docB, artB *int64) bool {
	if docA != nil && docB != nil {
		return *docA == *docB
	}
	if artA != nil && artB != nil {
		return *artA == *artB
	}
	return false
}

func sourceSet(mentions []common.Mention) map[string]struct{} {
	set := make(map[string]struct{}, len(mentions))
	for _, mention := range mentions {
		if key := mention.SourceKey(); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
