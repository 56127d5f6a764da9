package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"
)

// Registry is the entry point for tracking entities. It owns the
// create/resolve/delete lifecycle and triggers the historical mention
// backfill when a new entity is registered.
type Registry struct {
	entities EntityStore
	matcher  NameMatcher
	scanner  *Scanner
	log      logger.LoggerInstance
}

type RegistryParams struct {
	Entities EntityStore
	Matcher  NameMatcher
	Scanner  *Scanner
	Logger   logger.LoggerInstance
}

func NewRegistry(params RegistryParams) *Registry {
	log := params.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Registry{
		entities: params.Entities,
		matcher:  params.Matcher,
		scanner:  params.Scanner,
		log:      log,
	}
}

// RegisterParams describes a new entity to track. Name comparison is
// case-insensitive per owner.
type RegisterParams struct {
	OwnerID  int64
	Name     string
	Type     string
	Metadata map[string]any
}

// RegisterResult reports a completed registration. Registration and
// backfill are separate units of work: when the backfill fails the
// entity still exists and BackfillErr carries the failure so callers
// can report it without undoing the registration.
type RegisterResult struct {
	Entity       common.Entity
	MentionCount int
	BackfillErr  error
}

// Register creates a new tracked entity and scans the owner's existing
// sources for historical mentions of it. A name already tracked by the
// owner, compared case-insensitively, returns ErrDuplicateEntity.
func (r *Registry) Register(ctx context.Context, params RegisterParams) (RegisterResult, error) {
	nameLower := Normalize(params.Name)
	if nameLower == "" {
		return RegisterResult{}, fmt.Errorf("entity name must not be empty")
	}

	_, err := r.entities.GetEntityByName(ctx, params.OwnerID, nameLower)
	if err == nil {
		return RegisterResult{}, ErrDuplicateEntity
	}
	if !errors.Is(err, ErrEntityNotFound) {
		return RegisterResult{}, fmt.Errorf("failed to check for existing entity: %w", err)
	}

	entity, err := r.entities.CreateEntity(ctx, CreateEntityParams{
		OwnerID:   params.OwnerID,
		Name:      params.Name,
		NameLower: nameLower,
		Type:      params.Type,
		Metadata:  params.Metadata,
	})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("failed to create entity: %w", err)
	}

	count, err := r.scanner.Backfill(ctx, params.OwnerID, entity)
	if err != nil {
		r.log.Error("Backfill failed for new entity", "entity", entity.PublicID, "err", err)
		return RegisterResult{Entity: entity, BackfillErr: err}, nil
	}

	return RegisterResult{Entity: entity, MentionCount: count}, nil
}

// Resolve finds the owner's tracked entity for a queried name. It tries
// an exact case-insensitive match first and falls back to the fuzzy
// matcher, so slightly misspelled queries still land on the intended
// entity. ErrEntityNotFound is returned when nothing clears the match
// threshold.
func (r *Registry) Resolve(ctx context.Context, ownerID int64, name string) (common.Entity, error) {
	nameLower := Normalize(name)
	if nameLower == "" {
		return common.Entity{}, ErrEntityNotFound
	}

	entity, err := r.entities.GetEntityByName(ctx, ownerID, nameLower)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, ErrEntityNotFound) {
		return common.Entity{}, err
	}

	match, ok, err := r.matcher.BestMatch(ctx, ownerID, name)
	if err != nil {
		return common.Entity{}, fmt.Errorf("failed to match entity name: %w", err)
	}
	if !ok {
		return common.Entity{}, ErrEntityNotFound
	}

	return r.entities.GetEntityByName(ctx, ownerID, match.NameLower)
}

// Delete removes a tracked entity and, through the store, all of its
// recorded mentions. The name must match exactly after normalization;
// fuzzy resolution is deliberately not applied to deletes.
func (r *Registry) Delete(ctx context.Context, ownerID int64, name string) error {
	entity, err := r.entities.GetEntityByName(ctx, ownerID, Normalize(name))
	if err != nil {
		return err
	}
	return r.entities.DeleteEntity(ctx, ownerID, entity.ID)
}
