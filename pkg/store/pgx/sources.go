package pgx

import (
	"context"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/track"
)

// ListSourceTexts regroups the owner's stored chunks into per-source
// texts, documents and articles pooled. The query orders by source and
// chunk position, so one pass over the rows rebuilds each source.
func (s *Store) ListSourceTexts(ctx context.Context, ownerID int64) ([]track.SourceText, error) {
	rows, err := s.queries.ListOwnerChunks(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var sources []track.SourceText
	for _, row := range rows {
		if len(sources) == 0 || sources[len(sources)-1].PublicID != row.SourcePublicID {
			kind := common.SourceKindDocument
			if row.ArticleID != nil {
				kind = common.SourceKindArticle
			}
			sources = append(sources, track.SourceText{
				Kind:       kind,
				DocumentID: row.DocumentID,
				ArticleID:  row.ArticleID,
				PublicID:   row.SourcePublicID,
				Label:      row.SourceLabel,
			})
		}
		last := &sources[len(sources)-1]
		last.Chunks = append(last.Chunks, track.SourceChunkText{
			Index: row.ChunkIndex,
			Text:  row.Content,
		})
	}

	return sources, nil
}
