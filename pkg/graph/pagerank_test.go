package graph_test

import (
	"math"
	"testing"

	"github.com/argus-intel/argus/backend/pkg/graph"
)

func TestPageRankScoresSumToOne(t *testing.T) {
	nodes := []string{"A", "B", "C", "D"}
	edges := []graph.Edge{
		{Source: "A", Target: "B", Weight: 0.9},
		{Source: "A", Target: "C", Weight: 0.4},
		{Source: "C", Target: "D", Weight: 0.2},
	}

	ranks := graph.PageRank(nodes, edges, 0.85)

	sum := 0.0
	for _, node := range nodes {
		score := ranks[node]
		if score <= 0 {
			t.Errorf("rank[%s] = %v, want positive", node, score)
		}
		sum += score
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("ranks sum to %v, want 1", sum)
	}
}

func TestPageRankHubScoresHighest(t *testing.T) {
	nodes := []string{"hub", "a", "b", "c"}
	edges := []graph.Edge{
		{Source: "a", Target: "hub", Weight: 1},
		{Source: "b", Target: "hub", Weight: 1},
		{Source: "c", Target: "hub", Weight: 1},
	}

	ranks := graph.PageRank(nodes, edges, 0.85)

	for _, leaf := range []string{"a", "b", "c"} {
		if ranks["hub"] <= ranks[leaf] {
			t.Errorf("rank[hub] = %v not above rank[%s] = %v", ranks["hub"], leaf, ranks[leaf])
		}
	}
}

func TestPageRankHandlesIsolatedNodes(t *testing.T) {
	nodes := []string{"A", "B", "isolated"}
	edges := []graph.Edge{
		{Source: "A", Target: "B", Weight: 0.5},
	}

	ranks := graph.PageRank(nodes, edges, 0.85)

	if ranks["isolated"] <= 0 {
		t.Errorf("rank[isolated] = %v, want positive share from dangling mass", ranks["isolated"])
	}
}

func TestPageRankEmpty(t *testing.T) {
	ranks := graph.PageRank(nil, nil, 0.85)
	if len(ranks) != 0 {
		t.Errorf("PageRank of empty graph = %v, want empty", ranks)
	}
}
