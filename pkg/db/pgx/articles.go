package db

import (
	"context"
	"time"
)

const createArticle = `
INSERT INTO news_articles (public_id, owner_id, title, url, source_site)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, public_id, owner_id, title, url, source_site, scraped_at, created_at
`

type CreateArticleParams struct {
	PublicID   string
	OwnerID    int64
	Title      string
	Url        string
	SourceSite string
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (NewsArticle, error) {
	row := q.db.QueryRow(ctx, createArticle,
		arg.PublicID,
		arg.OwnerID,
		arg.Title,
		arg.Url,
		arg.SourceSite,
	)
	var a NewsArticle
	err := row.Scan(&a.ID, &a.PublicID, &a.OwnerID, &a.Title, &a.Url, &a.SourceSite, &a.ScrapedAt, &a.CreatedAt)
	return a, err
}

const getArticle = `
SELECT id, public_id, owner_id, title, url, source_site, scraped_at, created_at
FROM news_articles
WHERE owner_id = $1 AND id = $2
`

type GetArticleParams struct {
	OwnerID int64
	ID      int64
}

func (q *Queries) GetArticle(ctx context.Context, arg GetArticleParams) (NewsArticle, error) {
	row := q.db.QueryRow(ctx, getArticle, arg.OwnerID, arg.ID)
	var a NewsArticle
	err := row.Scan(&a.ID, &a.PublicID, &a.OwnerID, &a.Title, &a.Url, &a.SourceSite, &a.ScrapedAt, &a.CreatedAt)
	return a, err
}

const getArticleByPublicID = `
SELECT id, public_id, owner_id, title, url, source_site, scraped_at, created_at
FROM news_articles
WHERE owner_id = $1 AND public_id = $2
`

type GetArticleByPublicIDParams struct {
	OwnerID  int64
	PublicID string
}

func (q *Queries) GetArticleByPublicID(ctx context.Context, arg GetArticleByPublicIDParams) (NewsArticle, error) {
	row := q.db.QueryRow(ctx, getArticleByPublicID, arg.OwnerID, arg.PublicID)
	var a NewsArticle
	err := row.Scan(&a.ID, &a.PublicID, &a.OwnerID, &a.Title, &a.Url, &a.SourceSite, &a.ScrapedAt, &a.CreatedAt)
	return a, err
}

const listArticles = `
SELECT id, public_id, owner_id, title, url, source_site, scraped_at, created_at
FROM news_articles
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListArticles(ctx context.Context, ownerID int64) ([]NewsArticle, error) {
	rows, err := q.db.Query(ctx, listArticles, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NewsArticle
	for rows.Next() {
		var a NewsArticle
		if err := rows.Scan(&a.ID, &a.PublicID, &a.OwnerID, &a.Title, &a.Url, &a.SourceSite, &a.ScrapedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const markArticleScraped = `
UPDATE news_articles
SET title = $2, source_site = $3, scraped_at = $4
WHERE id = $1
`

type MarkArticleScrapedParams struct {
	ID         int64
	Title      string
	SourceSite string
	ScrapedAt  time.Time
}

func (q *Queries) MarkArticleScraped(ctx context.Context, arg MarkArticleScrapedParams) error {
	_, err := q.db.Exec(ctx, markArticleScraped, arg.ID, arg.Title, arg.SourceSite, arg.ScrapedAt)
	return err
}

const deleteArticle = `
DELETE FROM news_articles
WHERE owner_id = $1 AND id = $2
`

type DeleteArticleParams struct {
	OwnerID int64
	ID      int64
}

func (q *Queries) DeleteArticle(ctx context.Context, arg DeleteArticleParams) error {
	_, err := q.db.Exec(ctx, deleteArticle, arg.OwnerID, arg.ID)
	return err
}
