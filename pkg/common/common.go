package common

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceKind identifies which corpus a mention was found in. Sources are
// either user-uploaded documents or ingested news articles.
type SourceKind string

const (
	SourceKindDocument SourceKind = "document"
	SourceKindArticle  SourceKind = "news"
)

// Entity represents a named thing a user has chosen to track: a person,
// organization, location, or any custom concept. Entities are registered
// explicitly by name; they are never discovered automatically.
//
// NameLower is the case-folded form used for matching and carries the
// per-owner uniqueness constraint.
type Entity struct {
	ID        int64          `json:"-"`
	PublicID  string         `json:"entity_id"`
	OwnerID   int64          `json:"-"`
	Name      string         `json:"name"`
	NameLower string         `json:"-"`
	Type      string         `json:"entity_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Mention is one textual occurrence of an entity in one source, with the
// surrounding context. Exactly one of DocumentID and ArticleID is set.
//
// ChunkID is an opaque position marker of the form {source}_{index}; two
// mentions in the same source are considered nearby when their chunk
// indices differ by at most the configured adjacency window.
type Mention struct {
	ID         int64     `json:"-"`
	EntityID   int64     `json:"-"`
	OwnerID    int64     `json:"-"`
	DocumentID *int64    `json:"-"`
	ArticleID  *int64    `json:"-"`
	ChunkID    string    `json:"chunk_id"`
	Context    string    `json:"context"`
	CreatedAt  time.Time `json:"timestamp"`
}

// SourceKey returns a stable identifier for the mention's source, usable
// as a map key when grouping mentions across both source kinds.
func (m Mention) SourceKey() string {
	if m.DocumentID != nil {
		return fmt.Sprintf("document:%d", *m.DocumentID)
	}
	if m.ArticleID != nil {
		return fmt.Sprintf("news:%d", *m.ArticleID)
	}
	return ""
}

// MentionRecord is the presentation form of a mention, merged across both
// source kinds for listing.
type MentionRecord struct {
	Context       string  `json:"context"`
	Timestamp     string  `json:"timestamp"`
	SourceLabel   string  `json:"source_label"`
	DocumentID    *string `json:"document_id"`
	NewsArticleID *string `json:"news_article_id"`
	SourceType    string  `json:"source_type"`
}

// CoOccurrenceContext is one unit of evidence that two entities are
// related: the combined context of a qualifying mention pair from a
// single source.
type CoOccurrenceContext struct {
	SourceID    string `json:"source_id"`
	Context     string `json:"combined_context"`
	SourceLabel string `json:"source_label"`
}

// RelationshipEdge is a scored, undirected relationship between two
// entities. Edges are recomputed on every query and never persisted.
type RelationshipEdge struct {
	EntityA  string
	EntityB  string
	Weight   float64
	Contexts []CoOccurrenceContext
}

// GraphNode is a node of a relationship network response. Depth is the
// unweighted hop distance from the query's center entity, Score the
// node's PageRank within the returned subgraph.
type GraphNode struct {
	ID    string  `json:"id"`
	Group int     `json:"group,omitempty"`
	Score float64 `json:"score"`
	Depth int     `json:"depth"`
}

// EdgeContext wraps a single supporting context of a graph edge.
type EdgeContext struct {
	Context string `json:"context"`
}

// GraphEdge is an edge of a relationship network response. Weight is
// normalized to [0,1] against the strongest edge of the same query and
// carries at most five sample contexts.
type GraphEdge struct {
	Source   string        `json:"source"`
	Target   string        `json:"target"`
	Weight   float64       `json:"weight"`
	Value    float64       `json:"value,omitempty"`
	Contexts []EdgeContext `json:"contexts"`
}

// CentralEntity is a (name, score) pair ranking an entity by PageRank.
// It marshals as a two-element array to match the shape presentation
// layers consume.
type CentralEntity struct {
	Name  string
	Score float64
}

func (c CentralEntity) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Name, c.Score})
}

func (c *CentralEntity) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("central entity must be a [name, score] pair, got %d elements", len(raw))
	}
	name, ok := raw[0].(string)
	if !ok {
		return fmt.Errorf("central entity name must be a string")
	}
	score, ok := raw[1].(float64)
	if !ok {
		return fmt.Errorf("central entity score must be a number")
	}
	c.Name = name
	c.Score = score
	return nil
}

// RelationshipNetwork is the full relationship query result: the
// subgraph around the queried entity plus its most central members.
type RelationshipNetwork struct {
	Nodes           []GraphNode     `json:"nodes"`
	Edges           []GraphEdge     `json:"edges"`
	CentralEntities []CentralEntity `json:"central_entities"`
}

// EmptyNetwork returns a network with empty, non-nil collections. An
// entity with no mentions yields this rather than an error.
func EmptyNetwork() RelationshipNetwork {
	return RelationshipNetwork{
		Nodes:           []GraphNode{},
		Edges:           []GraphEdge{},
		CentralEntities: []CentralEntity{},
	}
}
