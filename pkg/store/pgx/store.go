// Package pgx backs the tracking and analysis storage interfaces with
// PostgreSQL.
package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/track"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const uniqueViolation = "23505"

// Store implements the tracking engine's storage interfaces on a
// pgx connection pool.
type Store struct {
	pool    *pgxpool.Pool
	queries *pgdb.Queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:    pool,
		queries: pgdb.New(pool),
	}
}

func (s *Store) CreateEntity(ctx context.Context, params track.CreateEntityParams) (common.Entity, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return common.Entity{}, err
	}

	metadata, err := json.Marshal(params.Metadata)
	if err != nil {
		return common.Entity{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	row, err := s.queries.CreateEntity(ctx, pgdb.CreateEntityParams{
		PublicID:   publicID,
		OwnerID:    params.OwnerID,
		Name:       params.Name,
		NameLower:  params.NameLower,
		EntityType: params.Type,
		Metadata:   metadata,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.Entity{}, track.ErrDuplicateEntity
		}
		return common.Entity{}, err
	}

	return entityFromRow(row), nil
}

func (s *Store) GetEntityByName(ctx context.Context, ownerID int64, nameLower string) (common.Entity, error) {
	row, err := s.queries.GetEntityByNameLower(ctx, pgdb.GetEntityByNameLowerParams{
		OwnerID:   ownerID,
		NameLower: nameLower,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Entity{}, track.ErrEntityNotFound
		}
		return common.Entity{}, err
	}
	return entityFromRow(row), nil
}

func (s *Store) GetEntityByPublicID(ctx context.Context, ownerID int64, publicID string) (common.Entity, error) {
	row, err := s.queries.GetEntityByPublicID(ctx, pgdb.GetEntityByPublicIDParams{
		OwnerID:  ownerID,
		PublicID: publicID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.Entity{}, track.ErrEntityNotFound
		}
		return common.Entity{}, err
	}
	return entityFromRow(row), nil
}

func (s *Store) ListEntities(ctx context.Context, ownerID int64) ([]common.Entity, error) {
	rows, err := s.queries.ListEntities(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	entities := make([]common.Entity, len(rows))
	for i, row := range rows {
		entities[i] = entityFromRow(row)
	}
	return entities, nil
}

func (s *Store) DeleteEntity(ctx context.Context, ownerID int64, entityID int64) error {
	return s.queries.DeleteEntity(ctx, pgdb.DeleteEntityParams{
		OwnerID: ownerID,
		ID:      entityID,
	})
}

func entityFromRow(row pgdb.TrackedEntity) common.Entity {
	var metadata map[string]any
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &metadata)
	}
	return common.Entity{
		ID:        row.ID,
		PublicID:  row.PublicID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		NameLower: row.NameLower,
		Type:      row.EntityType,
		Metadata:  metadata,
		CreatedAt: row.CreatedAt,
	}
}
