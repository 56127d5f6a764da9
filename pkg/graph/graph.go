package graph

import "sort"

const (
	// MaxEdgeContexts bounds the sample contexts carried per edge.
	MaxEdgeContexts = 5

	// DefaultDepth is the hop cutoff for subgraph traversal.
	DefaultDepth = 2

	// DefaultDamping is the PageRank damping factor.
	DefaultDamping = 0.85

	// DefaultTopCentral is how many central entities a network reports.
	DefaultTopCentral = 5
)

// Edge is an undirected weighted edge between two entity names with up
// to MaxEdgeContexts supporting context samples. Source and Target are
// kept in lexical order so that (A, B) and (B, A) name the same edge.
type Edge struct {
	Source   string
	Target   string
	Weight   float64
	Contexts []string
}

type edgeKey struct {
	a string
	b string
}

func keyFor(a, b string) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a: a, b: b}
}

// Graph is an in-memory co-occurrence graph. It is built fresh for
// every analysis call and discarded with the response; it must never be
// kept as shared state across requests.
type Graph struct {
	nodes map[string]struct{}
	edges map[edgeKey]*Edge
}

func New() Graph {
	return Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[edgeKey]*Edge),
	}
}

func (g Graph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge upserts the undirected edge between a and b. Repeated calls
// with the same pair replace the weight and merge distinct contexts up
// to MaxEdgeContexts. Self loops are ignored.
func (g Graph) AddEdge(a, b string, weight float64, contexts []string) {
	if a == b {
		return
	}
	g.nodes[a] = struct{}{}
	g.nodes[b] = struct{}{}

	key := keyFor(a, b)
	edge, ok := g.edges[key]
	if !ok {
		edge = &Edge{Source: key.a, Target: key.b}
		g.edges[key] = edge
	}
	edge.Weight = weight

	for _, context := range contexts {
		if len(edge.Contexts) >= MaxEdgeContexts {
			break
		}
		seen := false
		for _, existing := range edge.Contexts {
			if existing == context {
				seen = true
				break
			}
		}
		if !seen {
			edge.Contexts = append(edge.Contexts, context)
		}
	}
}

// HasEdges reports whether any edge touches the given node.
func (g Graph) HasEdges(name string) bool {
	for key := range g.edges {
		if key.a == name || key.b == name {
			return true
		}
	}
	return false
}

// Subgraph returns the nodes reachable from center within depth
// unweighted hops, mapped to their hop distance, together with the
// edges induced on that node set. Nodes beyond the cutoff are excluded
// even when a longer path would reach them.
func (g Graph) Subgraph(center string, depth int) (map[string]int, []Edge) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if _, ok := g.nodes[center]; !ok {
		return map[string]int{}, nil
	}

	adjacency := make(map[string][]string, len(g.nodes))
	for key := range g.edges {
		adjacency[key.a] = append(adjacency[key.a], key.b)
		adjacency[key.b] = append(adjacency[key.b], key.a)
	}

	distances := map[string]int{center: 0}
	frontier := []string{center}
	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		var next []string
		for _, node := range frontier {
			for _, neighbor := range adjacency[node] {
				if _, seen := distances[neighbor]; seen {
					continue
				}
				distances[neighbor] = hop
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	var induced []Edge
	for key, edge := range g.edges {
		if _, ok := distances[key.a]; !ok {
			continue
		}
		if _, ok := distances[key.b]; !ok {
			continue
		}
		induced = append(induced, *edge)
	}
	sort.Slice(induced, func(i, j int) bool {
		if induced[i].Source != induced[j].Source {
			return induced[i].Source < induced[j].Source
		}
		return induced[i].Target < induced[j].Target
	})

	return distances, induced
}
