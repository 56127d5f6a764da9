package db

import (
	"context"
	"encoding/json"
)

const createEntity = `
INSERT INTO tracked_entities (public_id, owner_id, name, name_lower, entity_type, metadata)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, public_id, owner_id, name, name_lower, entity_type, metadata, created_at
`

type CreateEntityParams struct {
	PublicID   string
	OwnerID    int64
	Name       string
	NameLower  string
	EntityType string
	Metadata   json.RawMessage
}

func (q *Queries) CreateEntity(ctx context.Context, arg CreateEntityParams) (TrackedEntity, error) {
	row := q.db.QueryRow(ctx, createEntity,
		arg.PublicID,
		arg.OwnerID,
		arg.Name,
		arg.NameLower,
		arg.EntityType,
		arg.Metadata,
	)
	var e TrackedEntity
	err := row.Scan(&e.ID, &e.PublicID, &e.OwnerID, &e.Name, &e.NameLower, &e.EntityType, &e.Metadata, &e.CreatedAt)
	return e, err
}

const getEntityByNameLower = `
SELECT id, public_id, owner_id, name, name_lower, entity_type, metadata, created_at
FROM tracked_entities
WHERE owner_id = $1 AND name_lower = $2
`

type GetEntityByNameLowerParams struct {
	OwnerID   int64
	NameLower string
}

func (q *Queries) GetEntityByNameLower(ctx context.Context, arg GetEntityByNameLowerParams) (TrackedEntity, error) {
	row := q.db.QueryRow(ctx, getEntityByNameLower, arg.OwnerID, arg.NameLower)
	var e TrackedEntity
	err := row.Scan(&e.ID, &e.PublicID, &e.OwnerID, &e.Name, &e.NameLower, &e.EntityType, &e.Metadata, &e.CreatedAt)
	return e, err
}

const getEntityByPublicID = `
SELECT id, public_id, owner_id, name, name_lower, entity_type, metadata, created_at
FROM tracked_entities
WHERE owner_id = $1 AND public_id = $2
`

type GetEntityByPublicIDParams struct {
	OwnerID  int64
	PublicID string
}

func (q *Queries) GetEntityByPublicID(ctx context.Context, arg GetEntityByPublicIDParams) (TrackedEntity, error) {
	row := q.db.QueryRow(ctx, getEntityByPublicID, arg.OwnerID, arg.PublicID)
	var e TrackedEntity
	err := row.Scan(&e.ID, &e.PublicID, &e.OwnerID, &e.Name, &e.NameLower, &e.EntityType, &e.Metadata, &e.CreatedAt)
	return e, err
}

const listEntities = `
SELECT id, public_id, owner_id, name, name_lower, entity_type, metadata, created_at
FROM tracked_entities
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListEntities(ctx context.Context, ownerID int64) ([]TrackedEntity, error) {
	rows, err := q.db.Query(ctx, listEntities, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TrackedEntity
	for rows.Next() {
		var e TrackedEntity
		if err := rows.Scan(&e.ID, &e.PublicID, &e.OwnerID, &e.Name, &e.NameLower, &e.EntityType, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const deleteEntity = `
DELETE FROM tracked_entities
WHERE owner_id = $1 AND id = $2
`

type DeleteEntityParams struct {
	OwnerID int64
	ID      int64
}

func (q *Queries) DeleteEntity(ctx context.Context, arg DeleteEntityParams) error {
	_, err := q.db.Exec(ctx, deleteEntity, arg.OwnerID, arg.ID)
	return err
}

const findSimilarEntity = `
SELECT id, public_id, owner_id, name, name_lower, entity_type, metadata, created_at,
       similarity(name_lower, $2)::float8 AS sim
FROM tracked_entities
WHERE owner_id = $1
  AND similarity(name_lower, $2) > $3
ORDER BY sim DESC, id ASC
LIMIT 1
`

type FindSimilarEntityParams struct {
	OwnerID   int64
	NameLower string
	Threshold float64
}

type FindSimilarEntityRow struct {
	TrackedEntity
	Similarity float64
}

func (q *Queries) FindSimilarEntity(ctx context.Context, arg FindSimilarEntityParams) (FindSimilarEntityRow, error) {
	row := q.db.QueryRow(ctx, findSimilarEntity, arg.OwnerID, arg.NameLower, arg.Threshold)
	var r FindSimilarEntityRow
	err := row.Scan(
		&r.ID, &r.PublicID, &r.OwnerID, &r.Name, &r.NameLower, &r.EntityType, &r.Metadata, &r.CreatedAt,
		&r.Similarity,
	)
	return r, err
}
