package track

import (
	"context"
	"strings"

	"github.com/argus-intel/argus/backend/pkg/common"
)

// Normalize case-folds and trims an entity name into the form used for
// matching and uniqueness.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CreateEntityParams carries the fields of a new tracked entity.
type CreateEntityParams struct {
	OwnerID   int64
	Name      string
	NameLower string
	Type      string
	Metadata  map[string]any
}

// EntityStore persists the tracked-entity registry.
//
// CreateEntity returns ErrDuplicateEntity when (owner, normalized name)
// is already taken; the Get methods return ErrEntityNotFound when no row
// matches.
type EntityStore interface {
	CreateEntity(ctx context.Context, params CreateEntityParams) (common.Entity, error)
	GetEntityByName(ctx context.Context, ownerID int64, nameLower string) (common.Entity, error)
	GetEntityByPublicID(ctx context.Context, ownerID int64, publicID string) (common.Entity, error)
	ListEntities(ctx context.Context, ownerID int64) ([]common.Entity, error)
	DeleteEntity(ctx context.Context, ownerID int64, entityID int64) error
}

// SourceChunkText is one stored chunk of a source's text.
type SourceChunkText struct {
	Index int32
	Text  string
}

// SourceText is a single scannable source: its identity, a display
// label, and its text split into position-indexed chunks. Sources kept
// unchunked are represented as one chunk at index 0.
type SourceText struct {
	Kind       common.SourceKind
	DocumentID *int64
	ArticleID  *int64
	PublicID   string
	Label      string
	Chunks     []SourceChunkText
}

// SourceStore supplies the pooled source texts visible to one owner,
// documents and articles alike.
type SourceStore interface {
	ListSourceTexts(ctx context.Context, ownerID int64) ([]SourceText, error)
}

// MentionStore persists scan results. SaveMentions writes one scan
// unit's mentions atomically and wraps storage failures in a
// PersistenceError. No deduplication happens at this layer: saving the
// results of a repeated scan duplicates rows.
type MentionStore interface {
	SaveMentions(ctx context.Context, mentions []common.Mention) error
	ListMentionRecords(ctx context.Context, ownerID int64, entityID int64, limit int32, offset int32) ([]common.MentionRecord, error)
}
