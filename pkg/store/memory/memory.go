// Package memory holds the whole tracking store in process memory. It
// backs tests and small single-node deployments; the pgx store is the
// production implementation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/graph"
	"github.com/argus-intel/argus/backend/pkg/track"
)

type Store struct {
	mu            sync.Mutex
	nextEntityID  int64
	nextMentionID int64
	entities      map[int64]common.Entity
	sources       []track.SourceText
	mentions      []common.Mention

	// SaveErr, when set, makes SaveMentions fail with a
	// PersistenceError wrapping it.
	SaveErr error
}

func NewStore() *Store {
	return &Store{
		entities: make(map[int64]common.Entity),
	}
}

// AddSource registers a source text for scanning.
func (s *Store) AddSource(source track.SourceText) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, source)
}

func (s *Store) CreateEntity(_ context.Context, params track.CreateEntityParams) (common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.entities {
		if existing.OwnerID == params.OwnerID && existing.NameLower == params.NameLower {
			return common.Entity{}, track.ErrDuplicateEntity
		}
	}

	s.nextEntityID++
	entity := common.Entity{
		ID:        s.nextEntityID,
		PublicID:  fmt.Sprintf("mem-%d", s.nextEntityID),
		OwnerID:   params.OwnerID,
		Name:      params.Name,
		NameLower: params.NameLower,
		Type:      params.Type,
		Metadata:  params.Metadata,
		CreatedAt: time.Now(),
	}
	s.entities[entity.ID] = entity
	return entity, nil
}

func (s *Store) GetEntityByName(_ context.Context, ownerID int64, nameLower string) (common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entity := range s.entities {
		if entity.OwnerID == ownerID && entity.NameLower == nameLower {
			return entity, nil
		}
	}
	return common.Entity{}, track.ErrEntityNotFound
}

func (s *Store) GetEntityByPublicID(_ context.Context, ownerID int64, publicID string) (common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entity := range s.entities {
		if entity.OwnerID == ownerID && entity.PublicID == publicID {
			return entity, nil
		}
	}
	return common.Entity{}, track.ErrEntityNotFound
}

func (s *Store) ListEntities(_ context.Context, ownerID int64) ([]common.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entities []common.Entity
	for _, entity := range s.entities {
		if entity.OwnerID == ownerID {
			entities = append(entities, entity)
		}
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities, nil
}

func (s *Store) DeleteEntity(_ context.Context, ownerID int64, entityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[entityID]
	if !ok || entity.OwnerID != ownerID {
		return track.ErrEntityNotFound
	}
	delete(s.entities, entityID)

	kept := s.mentions[:0]
	for _, mention := range s.mentions {
		if mention.EntityID != entityID {
			kept = append(kept, mention)
		}
	}
	s.mentions = kept
	return nil
}

func (s *Store) ListSourceTexts(_ context.Context, ownerID int64) ([]track.SourceText, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]track.SourceText(nil), s.sources...), nil
}

func (s *Store) SaveMentions(_ context.Context, mentions []common.Mention) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return &track.PersistenceError{Op: "mention insert", Err: s.SaveErr}
	}
	for _, mention := range mentions {
		s.nextMentionID++
		mention.ID = s.nextMentionID
		if mention.CreatedAt.IsZero() {
			mention.CreatedAt = time.Now()
		}
		s.mentions = append(s.mentions, mention)
	}
	return nil
}

func (s *Store) ListMentionRecords(_ context.Context, ownerID int64, entityID int64, limit int32, offset int32) ([]common.MentionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []common.Mention
	for _, mention := range s.mentions {
		if mention.OwnerID == ownerID && mention.EntityID == entityID {
			matched = append(matched, mention)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	start := int(offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if limit > 0 && start+int(limit) < end {
		end = start + int(limit)
	}

	records := make([]common.MentionRecord, 0, end-start)
	for _, mention := range matched[start:end] {
		source := s.sourceFor(mention)
		record := common.MentionRecord{
			Context:     mention.Context,
			Timestamp:   mention.CreatedAt.Format(time.RFC3339),
			SourceLabel: source.Label,
		}
		if mention.DocumentID != nil {
			record.SourceType = string(common.SourceKindDocument)
			publicID := source.PublicID
			record.DocumentID = &publicID
		} else {
			record.SourceType = string(common.SourceKindArticle)
			publicID := source.PublicID
			record.NewsArticleID = &publicID
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) EntityMentions(_ context.Context, ownerID int64, entityID int64) ([]common.Mention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []common.Mention
	for _, mention := range s.mentions {
		if mention.OwnerID == ownerID && mention.EntityID == entityID {
			matched = append(matched, mention)
		}
	}
	return matched, nil
}

func (s *Store) CoMentions(_ context.Context, ownerID int64, entityID int64) ([]graph.CoMention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shared := make(map[string]struct{})
	for _, mention := range s.mentions {
		if mention.OwnerID == ownerID && mention.EntityID == entityID {
			if key := mention.SourceKey(); key != "" {
				shared[key] = struct{}{}
			}
		}
	}

	var coMentions []graph.CoMention
	for _, mention := range s.mentions {
		if mention.OwnerID != ownerID || mention.EntityID == entityID {
			continue
		}
		if _, ok := shared[mention.SourceKey()]; !ok {
			continue
		}
		source := s.sourceFor(mention)
		coMentions = append(coMentions, graph.CoMention{
			EntityID:       mention.EntityID,
			EntityName:     s.entities[mention.EntityID].Name,
			DocumentID:     mention.DocumentID,
			ArticleID:      mention.ArticleID,
			ChunkID:        mention.ChunkID,
			Context:        mention.Context,
			SourcePublicID: source.PublicID,
			SourceLabel:    source.Label,
		})
	}
	return coMentions, nil
}

func (s *Store) sourceFor(mention common.Mention) track.SourceText {
	for _, source := range s.sources {
		if mention.DocumentID != nil && source.DocumentID != nil && *mention.DocumentID == *source.DocumentID {
			return source
		}
		if mention.ArticleID != nil && source.ArticleID != nil && *mention.ArticleID == *source.ArticleID {
			return source
		}
	}
	return track.SourceText{}
}
