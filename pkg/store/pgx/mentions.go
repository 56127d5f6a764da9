package pgx

import (
	"context"
	"time"

	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/graph"
	"github.com/argus-intel/argus/backend/pkg/track"
)

// SaveMentions writes one scan unit's mentions in a single transaction.
// A failure partway through rolls back every mention of the unit.
func (s *Store) SaveMentions(ctx context.Context, mentions []common.Mention) error {
	if len(mentions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &track.PersistenceError{Op: "begin mention write", Err: err}
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)
	for _, mention := range mentions {
		_, err := qtx.CreateMention(ctx, pgdb.CreateMentionParams{
			EntityID:   mention.EntityID,
			OwnerID:    mention.OwnerID,
			DocumentID: mention.DocumentID,
			ArticleID:  mention.ArticleID,
			ChunkID:    mention.ChunkID,
			Context:    mention.Context,
		})
		if err != nil {
			return &track.PersistenceError{Op: "mention insert", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &track.PersistenceError{Op: "mention commit", Err: err}
	}
	return nil
}

func (s *Store) ListMentionRecords(ctx context.Context, ownerID int64, entityID int64, limit int32, offset int32) ([]common.MentionRecord, error) {
	rows, err := s.queries.ListEntityMentionRecords(ctx, pgdb.ListEntityMentionRecordsParams{
		OwnerID:  ownerID,
		EntityID: entityID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	records := make([]common.MentionRecord, len(rows))
	for i, row := range rows {
		record := common.MentionRecord{
			Context:       row.Context,
			Timestamp:     row.CreatedAt.Format(time.RFC3339),
			DocumentID:    row.DocumentPublicID,
			NewsArticleID: row.ArticlePublicID,
		}
		if row.DocumentPublicID != nil {
			record.SourceType = string(common.SourceKindDocument)
			if row.DocumentName != nil {
				record.SourceLabel = *row.DocumentName
			}
		} else {
			record.SourceType = string(common.SourceKindArticle)
			switch {
			case row.ArticleTitle != nil && *row.ArticleTitle != "":
				record.SourceLabel = *row.ArticleTitle
			case row.ArticleUrl != nil:
				record.SourceLabel = *row.ArticleUrl
			}
		}
		records[i] = record
	}
	return records, nil
}

func (s *Store) EntityMentions(ctx context.Context, ownerID int64, entityID int64) ([]common.Mention, error) {
	rows, err := s.queries.GetEntityMentions(ctx, pgdb.GetEntityMentionsParams{
		OwnerID:  ownerID,
		EntityID: entityID,
	})
	if err != nil {
		return nil, err
	}

	mentions := make([]common.Mention, len(rows))
	for i, row := range rows {
		mentions[i] = common.Mention{
			ID:         row.ID,
			EntityID:   row.EntityID,
			OwnerID:    row.OwnerID,
			DocumentID: row.DocumentID,
			ArticleID:  row.ArticleID,
			ChunkID:    row.ChunkID,
			Context:    row.Context,
			CreatedAt:  row.CreatedAt,
		}
	}
	return mentions, nil
}

func (s *Store) CoMentions(ctx context.Context, ownerID int64, entityID int64) ([]graph.CoMention, error) {
	rows, err := s.queries.GetCoMentions(ctx, pgdb.GetCoMentionsParams{
		OwnerID:  ownerID,
		EntityID: entityID,
	})
	if err != nil {
		return nil, err
	}

	coMentions := make([]graph.CoMention, len(rows))
	for i, row := range rows {
		coMentions[i] = graph.CoMention{
			EntityID:       row.EntityID,
			EntityName:     row.EntityName,
			DocumentID:     row.DocumentID,
			ArticleID:      row.ArticleID,
			ChunkID:        row.ChunkID,
			Context:        row.Context,
			SourcePublicID: row.SourcePublicID,
			SourceLabel:    row.SourceLabel,
		}
	}
	return coMentions, nil
}
