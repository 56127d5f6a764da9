package db

import "context"

const insertDocumentChunks = `
INSERT INTO source_chunks (owner_id, document_id, chunk_index, content)
SELECT $1, $2, unnest($3::int4[]), unnest($4::text[])
`

type InsertDocumentChunksParams struct {
	OwnerID      int64
	DocumentID   int64
	ChunkIndexes []int32
	Contents     []string
}

func (q *Queries) InsertDocumentChunks(ctx context.Context, arg InsertDocumentChunksParams) error {
	_, err := q.db.Exec(ctx, insertDocumentChunks, arg.OwnerID, arg.DocumentID, arg.ChunkIndexes, arg.Contents)
	return err
}

const insertArticleChunks = `
INSERT INTO source_chunks (owner_id, article_id, chunk_index, content)
SELECT $1, $2, unnest($3::int4[]), unnest($4::text[])
`

type InsertArticleChunksParams struct {
	OwnerID      int64
	ArticleID    int64
	ChunkIndexes []int32
	Contents     []string
}

func (q *Queries) InsertArticleChunks(ctx context.Context, arg InsertArticleChunksParams) error {
	_, err := q.db.Exec(ctx, insertArticleChunks, arg.OwnerID, arg.ArticleID, arg.ChunkIndexes, arg.Contents)
	return err
}

const deleteDocumentChunks = `
DELETE FROM source_chunks
WHERE document_id = $1
`

func (q *Queries) DeleteDocumentChunks(ctx context.Context, documentID int64) error {
	_, err := q.db.Exec(ctx, deleteDocumentChunks, documentID)
	return err
}

const deleteArticleChunks = `
DELETE FROM source_chunks
WHERE article_id = $1
`

func (q *Queries) DeleteArticleChunks(ctx context.Context, articleID int64) error {
	_, err := q.db.Exec(ctx, deleteArticleChunks, articleID)
	return err
}

const listOwnerChunks = `
SELECT c.document_id, c.article_id, c.chunk_index, c.content,
       COALESCE(d.public_id, a.public_id) AS source_public_id,
       COALESCE(d.name, NULLIF(a.title, ''), a.url, '') AS source_label
FROM source_chunks c
LEFT JOIN documents d ON c.document_id = d.id
LEFT JOIN news_articles a ON c.article_id = a.id
WHERE c.owner_id = $1
ORDER BY source_public_id, c.chunk_index
`

type ListOwnerChunksRow struct {
	DocumentID     *int64
	ArticleID      *int64
	ChunkIndex     int32
	Content        string
	SourcePublicID string
	SourceLabel    string
}

// ListOwnerChunks returns every stored chunk an owner can see, documents
// and articles pooled, ordered by source and position.
func (q *Queries) ListOwnerChunks(ctx context.Context, ownerID int64) ([]ListOwnerChunksRow, error) {
	rows, err := q.db.Query(ctx, listOwnerChunks, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOwnerChunksRow
	for rows.Next() {
		var r ListOwnerChunksRow
		if err := rows.Scan(&r.DocumentID, &r.ArticleID, &r.ChunkIndex, &r.Content, &r.SourcePublicID, &r.SourceLabel); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
