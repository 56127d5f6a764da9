package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/argus-intel/argus/backend/internal/util"
	"github.com/argus-intel/argus/backend/pkg/chunk"
	"github.com/argus-intel/argus/backend/pkg/common"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/leaselock"
	"github.com/argus-intel/argus/backend/pkg/loader"
	"github.com/argus-intel/argus/backend/pkg/loader/doc"
	"github.com/argus-intel/argus/backend/pkg/loader/s3"
	"github.com/argus-intel/argus/backend/pkg/loader/web"
	"github.com/argus-intel/argus/backend/pkg/logger"
	storepgx "github.com/argus-intel/argus/backend/pkg/store/pgx"
	"github.com/argus-intel/argus/backend/pkg/track"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ingestLeaseTTL = 5 * time.Minute

func newScanner(conn *pgxpool.Pool) *track.Scanner {
	store := storepgx.NewStore(conn)
	return track.NewScanner(track.ScannerParams{
		Entities:      store,
		Sources:       store,
		Mentions:      store,
		ContextRadius: int(util.GetEnvNumeric("TRACK_CONTEXT_RADIUS", track.DefaultContextRadius)),
	})
}

// ProcessDocumentIngest extracts the text of an uploaded document from
// object storage, chunks it, replaces any chunks and mentions from a
// previous ingest run and scans the new text against every tracked
// entity of the owner.
func ProcessDocumentIngest(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	var data DocumentIngestMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	// Redelivered messages can reach two worker replicas at once; the
	// lease keeps one ingest run per document. A busy lease sends the
	// message back through the retry queue.
	return leaselock.New(conn).WithLease(
		ctx,
		fmt.Sprintf("ingest:document:%d", data.DocumentID),
		leaselock.Options{TTL: ingestLeaseTTL},
		func(ctx context.Context) error {
			return ingestDocument(ctx, s3Client, conn, data)
		},
	)
}

func ingestDocument(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	data DocumentIngestMsg,
) error {
	q := pgdb.New(conn)
	document, err := q.GetDocument(ctx, pgdb.GetDocumentParams{
		OwnerID: data.OwnerID,
		ID:      data.DocumentID,
	})
	if err != nil {
		return fmt.Errorf("failed to load document %d: %w", data.DocumentID, err)
	}

	extractor := doc.NewExtractor(s3.NewS3LoaderWithClient(util.GetEnv("AWS_BUCKET"), s3Client))
	raw, err := extractor.GetText(ctx, loader.Source{
		ID:   document.PublicID,
		Path: document.FileKey,
	})
	if err != nil {
		markDocumentFailed(q, document.ID)
		return fmt.Errorf("%w: document %s: %v", track.ErrSourceUnreadable, document.PublicID, err)
	}

	text := util.SanitizePostgresText(string(raw))
	chunks, err := chunk.Split(text, chunk.DefaultEncoder, chunk.DefaultMaxTokens)
	if err != nil {
		markDocumentFailed(q, document.ID)
		return fmt.Errorf("failed to chunk document %s: %w", document.PublicID, err)
	}

	// Re-ingesting replaces the previous run's derived rows wholesale
	// so repeated scans never duplicate mentions.
	if err := q.DeleteDocumentMentions(ctx, document.ID); err != nil {
		return fmt.Errorf("failed to clear old mentions: %w", err)
	}
	if err := q.DeleteDocumentChunks(ctx, document.ID); err != nil {
		return fmt.Errorf("failed to clear old chunks: %w", err)
	}

	if len(chunks) == 0 {
		logger.Info("[Queue] Document has no scannable text", "document_id", document.PublicID)
		return q.UpdateDocumentStatus(ctx, pgdb.UpdateDocumentStatusParams{
			ID:     document.ID,
			Status: pgdb.DocumentStatusReady,
		})
	}

	indexes := make([]int32, len(chunks))
	contents := make([]string, len(chunks))
	source := track.SourceText{
		Kind:       common.SourceKindDocument,
		DocumentID: &document.ID,
		PublicID:   document.PublicID,
		Label:      document.Name,
	}
	for i, c := range chunks {
		indexes[i] = c.Index
		contents[i] = c.Text
		source.Chunks = append(source.Chunks, track.SourceChunkText{Index: c.Index, Text: c.Text})
	}

	if err := q.InsertDocumentChunks(ctx, pgdb.InsertDocumentChunksParams{
		OwnerID:      document.OwnerID,
		DocumentID:   document.ID,
		ChunkIndexes: indexes,
		Contents:     contents,
	}); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	mentions, err := newScanner(conn).IncrementalScan(ctx, document.OwnerID, source)
	if err != nil {
		return fmt.Errorf("failed to scan document %s: %w", document.PublicID, err)
	}

	logger.Info("[Queue] Document ingested", "document_id", document.PublicID, "chunks", len(chunks), "mentions", len(mentions))
	return q.UpdateDocumentStatus(ctx, pgdb.UpdateDocumentStatusParams{
		ID:     document.ID,
		Status: pgdb.DocumentStatusReady,
	})
}

// ProcessArticleIngest fetches a registered news article URL, extracts
// the readable text, chunks it and scans it against every tracked
// entity of the owner.
func ProcessArticleIngest(
	ctx context.Context,
	conn *pgxpool.Pool,
	msg string,
) error {
	var data ArticleIngestMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	return leaselock.New(conn).WithLease(
		ctx,
		fmt.Sprintf("ingest:article:%d", data.ArticleID),
		leaselock.Options{TTL: ingestLeaseTTL},
		func(ctx context.Context) error {
			return ingestArticle(ctx, conn, data)
		},
	)
}

func ingestArticle(ctx context.Context, conn *pgxpool.Pool, data ArticleIngestMsg) error {
	q := pgdb.New(conn)
	article, err := q.GetArticle(ctx, pgdb.GetArticleParams{
		OwnerID: data.OwnerID,
		ID:      data.ArticleID,
	})
	if err != nil {
		return fmt.Errorf("failed to load article %d: %w", data.ArticleID, err)
	}

	webLoader := web.NewWebLoader()
	fetched, err := util.RetryWithContext(ctx, 3, func(ctx context.Context) (web.Article, error) {
		return webLoader.FetchArticle(ctx, article.Url)
	})
	if err != nil {
		return fmt.Errorf("%w: article %s: %v", track.ErrSourceUnreadable, article.PublicID, err)
	}

	title := strings.TrimSpace(fetched.Title)
	if title == "" {
		title = article.Url
	}
	if err := q.MarkArticleScraped(ctx, pgdb.MarkArticleScrapedParams{
		ID:         article.ID,
		Title:      title,
		SourceSite: sourceSite(article.Url),
		ScrapedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to mark article scraped: %w", err)
	}

	text := util.SanitizePostgresText(fetched.Text)
	chunks, err := chunk.Split(text, chunk.DefaultEncoder, chunk.DefaultMaxTokens)
	if err != nil {
		return fmt.Errorf("failed to chunk article %s: %w", article.PublicID, err)
	}

	if err := q.DeleteArticleMentions(ctx, article.ID); err != nil {
		return fmt.Errorf("failed to clear old mentions: %w", err)
	}
	if err := q.DeleteArticleChunks(ctx, article.ID); err != nil {
		return fmt.Errorf("failed to clear old chunks: %w", err)
	}

	if len(chunks) == 0 {
		logger.Info("[Queue] Article has no scannable text", "article_id", article.PublicID, "url", article.Url)
		return nil
	}

	indexes := make([]int32, len(chunks))
	contents := make([]string, len(chunks))
	source := track.SourceText{
		Kind:      common.SourceKindArticle,
		ArticleID: &article.ID,
		PublicID:  article.PublicID,
		Label:     title,
	}
	for i, c := range chunks {
		indexes[i] = c.Index
		contents[i] = c.Text
		source.Chunks = append(source.Chunks, track.SourceChunkText{Index: c.Index, Text: c.Text})
	}

	if err := q.InsertArticleChunks(ctx, pgdb.InsertArticleChunksParams{
		OwnerID:      article.OwnerID,
		ArticleID:    article.ID,
		ChunkIndexes: indexes,
		Contents:     contents,
	}); err != nil {
		return fmt.Errorf("failed to store chunks: %w", err)
	}

	mentions, err := newScanner(conn).IncrementalScan(ctx, article.OwnerID, source)
	if err != nil {
		return fmt.Errorf("failed to scan article %s: %w", article.PublicID, err)
	}

	logger.Info("[Queue] Article ingested", "article_id", article.PublicID, "chunks", len(chunks), "mentions", len(mentions))
	return nil
}

func markDocumentFailed(q *pgdb.Queries, documentID int64) {
	updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.UpdateDocumentStatus(updateCtx, pgdb.UpdateDocumentStatusParams{
		ID:     documentID,
		Status: pgdb.DocumentStatusFailed,
	}); err != nil {
		logger.Warn("[Queue] Failed to mark document as failed", "document_id", documentID, "err", err)
	}
}

func sourceSite(articleURL string) string {
	parsed, err := url.Parse(articleURL)
	if err != nil || parsed.Host == "" {
		return articleURL
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
