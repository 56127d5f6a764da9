package db

import (
	"encoding/json"
	"time"
)

const (
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

type TrackedEntity struct {
	ID         int64           `json:"-"`
	PublicID   string          `json:"entity_id"`
	OwnerID    int64           `json:"-"`
	Name       string          `json:"name"`
	NameLower  string          `json:"-"`
	EntityType string          `json:"entity_type"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Document struct {
	ID          int64     `json:"-"`
	PublicID    string    `json:"document_id"`
	OwnerID     int64     `json:"-"`
	Name        string    `json:"name"`
	FileKey     string    `json:"file_key"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewsArticle struct {
	ID         int64      `json:"-"`
	PublicID   string     `json:"article_id"`
	OwnerID    int64      `json:"-"`
	Title      string     `json:"title"`
	Url        string     `json:"url"`
	SourceSite string     `json:"source_site"`
	ScrapedAt  *time.Time `json:"scraped_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type SourceChunk struct {
	ID         int64     `json:"-"`
	OwnerID    int64     `json:"-"`
	DocumentID *int64    `json:"-"`
	ArticleID  *int64    `json:"-"`
	ChunkIndex int32     `json:"chunk_index"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type EntityMention struct {
	ID         int64     `json:"-"`
	EntityID   int64     `json:"-"`
	OwnerID    int64     `json:"-"`
	DocumentID *int64    `json:"-"`
	ArticleID  *int64    `json:"-"`
	ChunkID    string    `json:"chunk_id"`
	Context    string    `json:"context"`
	CreatedAt  time.Time `json:"timestamp"`
}
