package graph

const (
	pageRankIterations = 100
	pageRankTolerance  = 1e-6
)

// PageRank scores the given nodes by weighted PageRank over the
// undirected edges, edge weight acting as transition weight. Nodes with
// no outgoing weight spread their rank uniformly. Scores sum to 1.
func PageRank(nodes []string, edges []Edge, damping float64) map[string]float64 {
	if damping <= 0 || damping >= 1 {
		damping = DefaultDamping
	}
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}
	}

	outWeight := make(map[string]float64, n)
	neighbors := make(map[string][]Edge, n)
	for _, edge := range edges {
		outWeight[edge.Source] += edge.Weight
		outWeight[edge.Target] += edge.Weight
		neighbors[edge.Source] = append(neighbors[edge.Source], edge)
		neighbors[edge.Target] = append(neighbors[edge.Target], edge)
	}

	ranks := make(map[string]float64, n)
	for _, node := range nodes {
		ranks[node] = 1.0 / float64(n)
	}

	base := (1 - damping) / float64(n)
	for i := 0; i < pageRankIterations; i++ {
		next := make(map[string]float64, n)

		// Rank held by nodes without outgoing weight is spread evenly.
		dangling := 0.0
		for _, node := range nodes {
			if outWeight[node] == 0 {
				dangling += ranks[node]
			}
		}
		for _, node := range nodes {
			next[node] = base + damping*dangling/float64(n)
		}

		for _, node := range nodes {
			out := outWeight[node]
			if out == 0 {
				continue
			}
			share := damping * ranks[node] / out
			for _, edge := range neighbors[node] {
				other := edge.Target
				if other == node {
					other = edge.Source
				}
				next[other] += share * edge.Weight
			}
		}

		delta := 0.0
		for _, node := range nodes {
			diff := next[node] - ranks[node]
			if diff < 0 {
				diff = -diff
			}
			delta += diff
		}
		ranks = next
		if delta < pageRankTolerance {
			break
		}
	}

	return ranks
}
