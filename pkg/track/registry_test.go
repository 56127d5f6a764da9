package track_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/argus-intel/argus/backend/pkg/store/memory"
	"github.com/argus-intel/argus/backend/pkg/track"
)

func newTestRegistry(store *memory.Store) *track.Registry {
	scanner := track.NewScanner(track.ScannerParams{
		Entities: store,
		Sources:  store,
		Mentions: store,
	})
	matcher := track.NewTrigramMatcher(track.TrigramMatcherParams{
		Entities:  store,
		Threshold: 0.3,
	})
	return track.NewRegistry(track.RegistryParams{
		Entities: store,
		Matcher:  matcher,
		Scanner:  scanner,
	})
}

func TestRegisterDuplicate(t *testing.T) {
	store := memory.NewStore()
	registry := newTestRegistry(store)
	ctx := context.Background()

	_, err := registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "Acme Corp", Type: "ORG"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err = registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "acme corp", Type: "ORG"})
	if !errors.Is(err, track.ErrDuplicateEntity) {
		t.Fatalf("Register() error = %v, want ErrDuplicateEntity", err)
	}

	// A different owner can track the same name.
	if _, err := registry.Register(ctx, track.RegisterParams{OwnerID: 2, Name: "Acme Corp", Type: "ORG"}); err != nil {
		t.Fatalf("Register() for second owner error = %v", err)
	}
}

func TestRegisterAndIncrementalScan(t *testing.T) {
	store := memory.NewStore()
	registry := newTestRegistry(store)
	scanner := track.NewScanner(track.ScannerParams{
		Entities: store,
		Sources:  store,
		Mentions: store,
	})
	ctx := context.Background()

	result, err := registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "Jane Doe", Type: "PERSON"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.MentionCount != 0 {
		t.Fatalf("Register() with no sources found %d mentions, want 0", result.MentionCount)
	}

	docID := int64(10)
	source := track.SourceText{
		Kind:       "document",
		DocumentID: &docID,
		PublicID:   "doc-1",
		Label:      "court-report.txt",
		Chunks: []track.SourceChunkText{
			{Index: 0, Text: "Jane Doe appeared in court twice."},
		},
	}
	store.AddSource(source)

	mentions, err := scanner.IncrementalScan(ctx, 1, source)
	if err != nil {
		t.Fatalf("IncrementalScan() error = %v", err)
	}
	if len(mentions) != 1 {
		t.Fatalf("IncrementalScan() found %d mentions, want 1", len(mentions))
	}
	if !strings.Contains(mentions[0].Context, "appeared in court twice") {
		t.Errorf("mention context = %q, want it to contain the surrounding sentence", mentions[0].Context)
	}
	if mentions[0].ChunkID != "doc-1_0" {
		t.Errorf("mention chunk id = %q, want %q", mentions[0].ChunkID, "doc-1_0")
	}

	records, err := store.ListMentionRecords(ctx, 1, result.Entity.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListMentionRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListMentionRecords() returned %d records, want 1", len(records))
	}
	if !strings.Contains(strings.ToLower(records[0].Context), "jane doe") {
		t.Errorf("record context = %q, want it to contain the entity name", records[0].Context)
	}
	if records[0].SourceLabel != "court-report.txt" {
		t.Errorf("record source label = %q, want %q", records[0].SourceLabel, "court-report.txt")
	}
}

func TestRegisterBackfill(t *testing.T) {
	store := memory.NewStore()
	registry := newTestRegistry(store)
	ctx := context.Background()

	docID := int64(1)
	store.AddSource(track.SourceText{
		Kind:       "document",
		DocumentID: &docID,
		PublicID:   "doc-1",
		Label:      "notes.txt",
		Chunks: []track.SourceChunkText{
			{Index: 0, Text: "Acme Corp filed its report."},
			{Index: 1, Text: "Later, Acme Corp expanded. Acme Corp hired."},
		},
	})

	result, err := registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "Acme Corp", Type: "ORG"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.BackfillErr != nil {
		t.Fatalf("Register() backfill error = %v", result.BackfillErr)
	}
	if result.MentionCount != 3 {
		t.Fatalf("Register() found %d mentions, want 3", result.MentionCount)
	}
}

func TestRegisterBackfillFailureKeepsEntity(t *testing.T) {
	store := memory.NewStore()
	registry := newTestRegistry(store)
	ctx := context.Background()

	docID := int64(1)
	store.AddSource(track.SourceText{
		Kind:       "document",
		DocumentID: &docID,
		PublicID:   "doc-1",
		Chunks:     []track.SourceChunkText{{Index: 0, Text: "Acme Corp filed."}},
	})
	store.SaveErr = errors.New("disk full")

	result, err := registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "Acme Corp", Type: "ORG"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.BackfillErr == nil {
		t.Fatal("Register() backfill error = nil, want persistence failure")
	}
	var perr *track.PersistenceError
	if !errors.As(result.BackfillErr, &perr) {
		t.Fatalf("backfill error = %v, want PersistenceError", result.BackfillErr)
	}

	if _, err := store.GetEntityByName(ctx, 1, "acme corp"); err != nil {
		t.Fatalf("entity missing after failed backfill: %v", err)
	}
}

func TestResolve(t *testing.T) {
	store := memory.NewStore()
	registry := newTestRegistry(store)
	ctx := context.Background()

	if _, err := registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "United Nations", Type: "ORG"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{name: "exact case-insensitive", query: "united nations", wantErr: nil},
		{name: "fuzzy above threshold", query: "United Nation", wantErr: nil},
		{name: "below threshold", query: "zebra", wantErr: track.ErrEntityNotFound},
		{name: "empty query", query: "", wantErr: track.ErrEntityNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, err := registry.Resolve(ctx, 1, tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.query, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.query, err)
			}
			if entity.Name != "United Nations" {
				t.Errorf("Resolve(%q) = %q, want %q", tt.query, entity.Name, "United Nations")
			}
		})
	}
}

func TestDelete(t *testing.T) {
	store := memory.NewStore()
	registry := newTestRegistry(store)
	ctx := context.Background()

	docID := int64(1)
	store.AddSource(track.SourceText{
		Kind:       "document",
		DocumentID: &docID,
		PublicID:   "doc-1",
		Chunks:     []track.SourceChunkText{{Index: 0, Text: "Acme Corp filed."}},
	})

	result, err := registry.Register(ctx, track.RegisterParams{OwnerID: 1, Name: "Acme Corp", Type: "ORG"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := registry.Delete(ctx, 1, "ACME CORP"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetEntityByName(ctx, 1, "acme corp"); !errors.Is(err, track.ErrEntityNotFound) {
		t.Fatalf("entity still present after delete, err = %v", err)
	}

	mentions, err := store.EntityMentions(ctx, 1, result.Entity.ID)
	if err != nil {
		t.Fatalf("EntityMentions() error = %v", err)
	}
	if len(mentions) != 0 {
		t.Errorf("mentions remain after entity delete: %d", len(mentions))
	}
}
