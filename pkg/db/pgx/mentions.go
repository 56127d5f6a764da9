package db

import (
	"context"
	"time"
)

const createMention = `
INSERT INTO entity_mentions (entity_id, owner_id, document_id, article_id, chunk_id, context)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, entity_id, owner_id, document_id, article_id, chunk_id, context, created_at
`

type CreateMentionParams struct {
	EntityID   int64
	OwnerID    int64
	DocumentID *int64
	ArticleID  *int64
	ChunkID    string
	Context    string
}

func (q *Queries) CreateMention(ctx context.Context, arg CreateMentionParams) (EntityMention, error) {
	row := q.db.QueryRow(ctx, createMention,
		arg.EntityID,
		arg.OwnerID,
		arg.DocumentID,
		arg.ArticleID,
		arg.ChunkID,
		arg.Context,
	)
	var m EntityMention
	err := row.Scan(&m.ID, &m.EntityID, &m.OwnerID, &m.DocumentID, &m.ArticleID, &m.ChunkID, &m.Context, &m.CreatedAt)
	return m, err
}

const listEntityMentionRecords = `
SELECT m.context, m.created_at,
       d.public_id, d.name,
       a.public_id, a.title, a.url
FROM entity_mentions m
LEFT JOIN documents d ON m.document_id = d.id
LEFT JOIN news_articles a ON m.article_id = a.id
WHERE m.owner_id = $1 AND m.entity_id = $2
ORDER BY m.created_at DESC, m.id DESC
LIMIT $3 OFFSET $4
`

type ListEntityMentionRecordsParams struct {
	OwnerID  int64
	EntityID int64
	Limit    int32
	Offset   int32
}

type ListEntityMentionRecordsRow struct {
	Context          string
	CreatedAt        time.Time
	DocumentPublicID *string
	DocumentName     *string
	ArticlePublicID  *string
	ArticleTitle     *string
	ArticleUrl       *string
}

// ListEntityMentionRecords merges document and article mentions into one
// timestamp-descending page, ties broken by mention id.
func (q *Queries) ListEntityMentionRecords(ctx context.Context, arg ListEntityMentionRecordsParams) ([]ListEntityMentionRecordsRow, error) {
	rows, err := q.db.Query(ctx, listEntityMentionRecords, arg.OwnerID, arg.EntityID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListEntityMentionRecordsRow
	for rows.Next() {
		var r ListEntityMentionRecordsRow
		if err := rows.Scan(&r.Context, &r.CreatedAt, &r.DocumentPublicID, &r.DocumentName, &r.ArticlePublicID, &r.ArticleTitle, &r.ArticleUrl); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getEntityMentions = `
SELECT id, entity_id, owner_id, document_id, article_id, chunk_id, context, created_at
FROM entity_mentions
WHERE owner_id = $1 AND entity_id = $2
`

type GetEntityMentionsParams struct {
	OwnerID  int64
	EntityID int64
}

func (q *Queries) GetEntityMentions(ctx context.Context, arg GetEntityMentionsParams) ([]EntityMention, error) {
	rows, err := q.db.Query(ctx, getEntityMentions, arg.OwnerID, arg.EntityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []EntityMention
	for rows.Next() {
		var m EntityMention
		if err := rows.Scan(&m.ID, &m.EntityID, &m.OwnerID, &m.DocumentID, &m.ArticleID, &m.ChunkID, &m.Context, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getCoMentions = `
SELECT m.id, m.entity_id, e.name, m.document_id, m.article_id, m.chunk_id, m.context, m.created_at,
       COALESCE(d.public_id, a.public_id, '') AS source_public_id,
       COALESCE(d.name, NULLIF(a.title, ''), a.url, '') AS source_label
FROM entity_mentions m
JOIN tracked_entities e ON e.id = m.entity_id
LEFT JOIN documents d ON m.document_id = d.id
LEFT JOIN news_articles a ON m.article_id = a.id
WHERE m.owner_id = $1
  AND m.entity_id <> $2
  AND (
    m.document_id IN (
      SELECT document_id FROM entity_mentions
      WHERE entity_id = $2 AND document_id IS NOT NULL
    )
    OR m.article_id IN (
      SELECT article_id FROM entity_mentions
      WHERE entity_id = $2 AND article_id IS NOT NULL
    )
  )
`

type GetCoMentionsParams struct {
	OwnerID  int64
	EntityID int64
}

type GetCoMentionsRow struct {
	EntityMention
	EntityName     string
	SourcePublicID string
	SourceLabel    string
}

// GetCoMentions returns mentions of every other entity that shares at
// least one source with the given entity.
func (q *Queries) GetCoMentions(ctx context.Context, arg GetCoMentionsParams) ([]GetCoMentionsRow, error) {
	rows, err := q.db.Query(ctx, getCoMentions, arg.OwnerID, arg.EntityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCoMentionsRow
	for rows.Next() {
		var r GetCoMentionsRow
		if err := rows.Scan(&r.ID, &r.EntityID, &r.EntityName, &r.DocumentID, &r.ArticleID, &r.ChunkID, &r.Context, &r.CreatedAt, &r.SourcePublicID, &r.SourceLabel); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countEntityMentions = `
SELECT count(*) FROM entity_mentions
WHERE owner_id = $1 AND entity_id = $2
`

func (q *Queries) CountEntityMentions(ctx context.Context, arg GetEntityMentionsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countEntityMentions, arg.OwnerID, arg.EntityID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteDocumentMentions = `
DELETE FROM entity_mentions
WHERE document_id = $1
`

func (q *Queries) DeleteDocumentMentions(ctx context.Context, documentID int64) error {
	_, err := q.db.Exec(ctx, deleteDocumentMentions, documentID)
	return err
}

const deleteArticleMentions = `
DELETE FROM entity_mentions
WHERE article_id = $1
`

func (q *Queries) DeleteArticleMentions(ctx context.Context, articleID int64) error {
	_, err := q.db.Exec(ctx, deleteArticleMentions, articleID)
	return err
}
