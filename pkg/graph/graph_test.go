package graph_test

import (
	"testing"

	"github.com/argus-intel/argus/backend/pkg/graph"
)

func TestAddEdge(t *testing.T) {
	g := graph.New()

	g.AddEdge("B", "A", 0.5, []string{"c1", "c2"})
	g.AddEdge("A", "B", 0.7, []string{"c2", "c3", "c4", "c5", "c6", "c7"})
	g.AddEdge("A", "A", 0.9, nil)

	distances, edges := g.Subgraph("A", 1)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	edge := edges[0]
	if edge.Source != "A" || edge.Target != "B" {
		t.Errorf("edge endpoints = (%q, %q), want lexical order (A, B)", edge.Source, edge.Target)
	}
	if edge.Weight != 0.7 {
		t.Errorf("edge weight = %v, want upserted 0.7", edge.Weight)
	}
	if len(edge.Contexts) != graph.MaxEdgeContexts {
		t.Errorf("edge carries %d contexts, want cap %d", len(edge.Contexts), graph.MaxEdgeContexts)
	}
	if len(distances) != 2 {
		t.Errorf("got %d nodes, want 2", len(distances))
	}
}

func TestSubgraphDepthCutoff(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", 0.9, nil)
	g.AddEdge("B", "C", 0.9, nil)
	g.AddEdge("C", "D", 0.9, nil)

	distances, edges := g.Subgraph("A", 2)

	if _, ok := distances["D"]; ok {
		t.Error("node D is 3 hops away and must be excluded at depth 2")
	}
	want := map[string]int{"A": 0, "B": 1, "C": 2}
	for node, depth := range want {
		if distances[node] != depth {
			t.Errorf("distance[%s] = %d, want %d", node, distances[node], depth)
		}
	}

	for _, edge := range edges {
		if edge.Source == "D" || edge.Target == "D" {
			t.Errorf("induced edges include excluded node D: %v", edge)
		}
	}
	if len(edges) != 2 {
		t.Errorf("got %d induced edges, want 2", len(edges))
	}
}

func TestSubgraphUnknownCenter(t *testing.T) {
	g := graph.New()
	g.AddEdge("A", "B", 0.9, nil)

	distances, edges := g.Subgraph("Z", 2)
	if len(distances) != 0 || len(edges) != 0 {
		t.Errorf("Subgraph of unknown center = (%v, %v), want empty", distances, edges)
	}
}

func TestHasEdges(t *testing.T) {
	g := graph.New()
	g.AddNode("lonely")
	g.AddEdge("A", "B", 0.4, nil)

	if g.HasEdges("lonely") {
		t.Error("HasEdges(lonely) = true, want false")
	}
	if !g.HasEdges("A") {
		t.Error("HasEdges(A) = false, want true")
	}
}
