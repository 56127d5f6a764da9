package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/graph"
	"github.com/argus-intel/argus/backend/pkg/store/memory"
	"github.com/argus-intel/argus/backend/pkg/track"
)

func addEntity(t *testing.T, store *memory.Store, ownerID int64, name string) common.Entity {
	t.Helper()
	entity, err := store.CreateEntity(context.Background(), track.CreateEntityParams{
		OwnerID:   ownerID,
		Name:      name,
		NameLower: track.Normalize(name),
		Type:      "CUSTOM",
	})
	if err != nil {
		t.Fatalf("CreateEntity(%s) error = %v", name, err)
	}
	return entity
}

func addDocumentSource(store *memory.Store, docID int64, publicID, label string) *int64 {
	id := docID
	store.AddSource(track.SourceText{
		Kind:       common.SourceKindDocument,
		DocumentID: &id,
		PublicID:   publicID,
		Label:      label,
	})
	return &id
}

func addMention(t *testing.T, store *memory.Store, entity common.Entity, docID *int64, chunkID, mentionContext string) {
	t.Helper()
	err := store.SaveMentions(context.Background(), []common.Mention{{
		EntityID:   entity.ID,
		OwnerID:    entity.OwnerID,
		DocumentID: docID,
		ChunkID:    chunkID,
		Context:    mentionContext,
	}})
	if err != nil {
		t.Fatalf("SaveMentions error = %v", err)
	}
}

func TestNetworkEmptyForUnmentionedEntity(t *testing.T) {
	store := memory.NewStore()
	entity := addEntity(t, store, 1, "Jane Doe")
	analyzer := graph.NewAnalyzer(graph.AnalyzerParams{Reader: store})

	network, err := analyzer.Network(context.Background(), 1, entity, 2)
	if err != nil {
		t.Fatalf("Network() error = %v", err)
	}
	if network.Nodes == nil || network.Edges == nil || network.CentralEntities == nil {
		t.Fatal("empty network must use non-nil empty collections")
	}
	if len(network.Nodes) != 0 || len(network.Edges) != 0 || len(network.CentralEntities) != 0 {
		t.Errorf("network = %+v, want empty", network)
	}
}

func TestNetworkBasicPair(t *testing.T) {
	store := memory.NewStore()
	jane := addEntity(t, store, 1, "Jane Doe")
	acme := addEntity(t, store, 1, "Acme Corp")

	d1 := addDocumentSource(store, 1, "D1", "filing.txt")
	addMention(t, store, jane, d1, "D1_0", "Jane Doe met with executives")
	addMention(t, store, acme, d1, "D1_0", "executives of Acme Corp")

	analyzer := graph.NewAnalyzer(graph.AnalyzerParams{Reader: store})
	network, err := analyzer.Network(context.Background(), 1, jane, 2)
	if err != nil {
		t.Fatalf("Network() error = %v", err)
	}

	if len(network.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(network.Nodes))
	}
	depths := map[string]int{}
	for _, node := range network.Nodes {
		depths[node.ID] = node.Depth
	}
	if depths["Jane Doe"] != 0 || depths["Acme Corp"] != 1 {
		t.Errorf("node depths = %v, want center 0 and neighbor 1", depths)
	}

	if len(network.Edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(network.Edges))
	}
	edge := network.Edges[0]
	if edge.Weight != 1 {
		t.Errorf("normalized edge weight = %v, want 1 for the query's strongest edge", edge.Weight)
	}
	if len(edge.Contexts) == 0 {
		t.Error("edge carries no contexts")
	}

	if len(network.CentralEntities) != 2 {
		t.Fatalf("got %d central entities, want 2", len(network.CentralEntities))
	}
	if network.CentralEntities[0].Score < network.CentralEntities[1].Score {
		t.Error("central entities not sorted by score descending")
	}
}

func TestNetworkDepthCutoff(t *testing.T) {
	store := memory.NewStore()
	a := addEntity(t, store, 1, "Alpha")
	b := addEntity(t, store, 1, "Beta")
	c := addEntity(t, store, 1, "Gamma")

	d1 := addDocumentSource(store, 1, "D1", "one.txt")
	d2 := addDocumentSource(store, 2, "D2", "two.txt")
	addMention(t, store, a, d1, "D1_0", "Alpha context")
	addMention(t, store, b, d1, "D1_0", "Beta context")
	addMention(t, store, b, d2, "D2_0", "Beta again")
	addMention(t, store, c, d2, "D2_0", "Gamma context")

	analyzer := graph.NewAnalyzer(graph.AnalyzerParams{Reader: store})

	shallow, err := analyzer.Network(context.Background(), 1, a, 1)
	if err != nil {
		t.Fatalf("Network(depth=1) error = %v", err)
	}
	for _, node := range shallow.Nodes {
		if node.ID == "Gamma" {
			t.Error("Gamma is 2 hops from Alpha and must be excluded at depth 1")
		}
		if node.Depth > 1 {
			t.Errorf("node %s at depth %d exceeds cutoff 1", node.ID, node.Depth)
		}
	}

	deep, err := analyzer.Network(context.Background(), 1, a, 2)
	if err != nil {
		t.Fatalf("Network(depth=2) error = %v", err)
	}
	found := false
	for _, node := range deep.Nodes {
		if node.ID == "Gamma" {
			found = true
			if node.Depth != 2 {
				t.Errorf("Gamma depth = %d, want 2", node.Depth)
			}
		}
	}
	if !found {
		t.Error("Gamma missing from depth-2 network")
	}
}

func TestCoOccurrenceContexts(t *testing.T) {
	store := memory.NewStore()
	jane := addEntity(t, store, 1, "Jane Doe")
	acme := addEntity(t, store, 1, "Acme Corp")

	d1 := addDocumentSource(store, 1, "D1", "one.txt")
	d2 := addDocumentSource(store, 2, "D2", "two.txt")
	addMention(t, store, jane, d1, "D1_0", "Jane Doe visited")
	addMention(t, store, acme, d1, "D1_0", "offices of Acme Corp")
	// Acme alone in a far chunk of another document must not count.
	addMention(t, store, acme, d2, "D2_5", "Acme Corp earnings")

	analyzer := graph.NewAnalyzer(graph.AnalyzerParams{Reader: store})
	contexts, err := analyzer.Contexts(context.Background(), 1, jane, acme.ID)
	if err != nil {
		t.Fatalf("Contexts() error = %v", err)
	}

	if len(contexts) != 1 {
		t.Fatalf("got %d contexts, want exactly 1", len(contexts))
	}
	if contexts[0].SourceID != "D1" {
		t.Errorf("context source = %q, want D1", contexts[0].SourceID)
	}
	if contexts[0].Context != "Jane Doe visited ... offices of Acme Corp" {
		t.Errorf("combined context = %q", contexts[0].Context)
	}
}

func TestContextsAdjacentChunks(t *testing.T) {
	store := memory.NewStore()
	jane := addEntity(t, store, 1, "Jane Doe")
	acme := addEntity(t, store, 1, "Acme Corp")

	d1 := addDocumentSource(store, 1, "D1", "one.txt")
	addMention(t, store, jane, d1, "D1_3", "Jane Doe spoke")
	addMention(t, store, acme, d1, "D1_4", "on behalf of Acme Corp")
	addMention(t, store, acme, d1, "D1_7", "Acme Corp elsewhere")

	analyzer := graph.NewAnalyzer(graph.AnalyzerParams{Reader: store})
	contexts, err := analyzer.Contexts(context.Background(), 1, jane, acme.ID)
	if err != nil {
		t.Fatalf("Contexts() error = %v", err)
	}
	if len(contexts) != 1 {
		t.Fatalf("got %d contexts, want 1 from the adjacent chunk only", len(contexts))
	}
}

type flakyReader struct {
	center         common.Entity
	centerMentions []common.Mention
	coMentions     []graph.CoMention
}

func (r *flakyReader) EntityMentions(_ context.Context, _ int64, entityID int64) ([]common.Mention, error) {
	if entityID == r.center.ID {
		return r.centerMentions, nil
	}
	return nil, errors.New("candidate lookup failed")
}

func (r *flakyReader) CoMentions(_ context.Context, _ int64, entityID int64) ([]graph.CoMention, error) {
	if entityID == r.center.ID {
		return r.coMentions, nil
	}
	return nil, nil
}

func TestNetworkIsolatesCandidateFailures(t *testing.T) {
	docID := int64(1)
	center := common.Entity{ID: 1, OwnerID: 1, Name: "Jane Doe"}
	reader := &flakyReader{
		center: center,
		centerMentions: []common.Mention{
			{EntityID: 1, OwnerID: 1, DocumentID: &docID, ChunkID: "D1_0", Context: "Jane Doe here"},
		},
		coMentions: []graph.CoMention{
			{EntityID: 2, EntityName: "Acme Corp", DocumentID: &docID, ChunkID: "D1_0", Context: "Acme Corp here", SourcePublicID: "D1"},
		},
	}

	analyzer := graph.NewAnalyzer(graph.AnalyzerParams{Reader: reader})
	network, err := analyzer.Network(context.Background(), 1, center, 2)
	if err != nil {
		t.Fatalf("Network() error = %v, want failed candidate dropped instead", err)
	}
	if len(network.Edges) != 0 {
		t.Errorf("got %d edges, want 0 after dropping the failed candidate", len(network.Edges))
	}
}
