package db

import "context"

const createDocument = `
INSERT INTO documents (public_id, owner_id, name, file_key, content_type, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, public_id, owner_id, name, file_key, content_type, status, created_at
`

type CreateDocumentParams struct {
	PublicID    string
	OwnerID     int64
	Name        string
	FileKey     string
	ContentType string
	Status      string
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error) {
	row := q.db.QueryRow(ctx, createDocument,
		arg.PublicID,
		arg.OwnerID,
		arg.Name,
		arg.FileKey,
		arg.ContentType,
		arg.Status,
	)
	var d Document
	err := row.Scan(&d.ID, &d.PublicID, &d.OwnerID, &d.Name, &d.FileKey, &d.ContentType, &d.Status, &d.CreatedAt)
	return d, err
}

const getDocument = `
SELECT id, public_id, owner_id, name, file_key, content_type, status, created_at
FROM documents
WHERE owner_id = $1 AND id = $2
`

type GetDocumentParams struct {
	OwnerID int64
	ID      int64
}

func (q *Queries) GetDocument(ctx context.Context, arg GetDocumentParams) (Document, error) {
	row := q.db.QueryRow(ctx, getDocument, arg.OwnerID, arg.ID)
	var d Document
	err := row.Scan(&d.ID, &d.PublicID, &d.OwnerID, &d.Name, &d.FileKey, &d.ContentType, &d.Status, &d.CreatedAt)
	return d, err
}

const getDocumentByPublicID = `
SELECT id, public_id, owner_id, name, file_key, content_type, status, created_at
FROM documents
WHERE owner_id = $1 AND public_id = $2
`

type GetDocumentByPublicIDParams struct {
	OwnerID  int64
	PublicID string
}

func (q *Queries) GetDocumentByPublicID(ctx context.Context, arg GetDocumentByPublicIDParams) (Document, error) {
	row := q.db.QueryRow(ctx, getDocumentByPublicID, arg.OwnerID, arg.PublicID)
	var d Document
	err := row.Scan(&d.ID, &d.PublicID, &d.OwnerID, &d.Name, &d.FileKey, &d.ContentType, &d.Status, &d.CreatedAt)
	return d, err
}

const listDocuments = `
SELECT id, public_id, owner_id, name, file_key, content_type, status, created_at
FROM documents
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListDocuments(ctx context.Context, ownerID int64) ([]Document, error) {
	rows, err := q.db.Query(ctx, listDocuments, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.PublicID, &d.OwnerID, &d.Name, &d.FileKey, &d.ContentType, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

const updateDocumentStatus = `
UPDATE documents
SET status = $2
WHERE id = $1
`

type UpdateDocumentStatusParams struct {
	ID     int64
	Status string
}

func (q *Queries) UpdateDocumentStatus(ctx context.Context, arg UpdateDocumentStatusParams) error {
	_, err := q.db.Exec(ctx, updateDocumentStatus, arg.ID, arg.Status)
	return err
}

const deleteDocument = `
DELETE FROM documents
WHERE owner_id = $1 AND id = $2
`

type DeleteDocumentParams struct {
	OwnerID int64
	ID      int64
}

func (q *Queries) DeleteDocument(ctx context.Context, arg DeleteDocumentParams) error {
	_, err := q.db.Exec(ctx, deleteDocument, arg.OwnerID, arg.ID)
	return err
}
