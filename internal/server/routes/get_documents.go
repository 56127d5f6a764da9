package routes

import (
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/storage"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetDocumentsHandler lists the caller's documents with presigned
// download links. A document whose link cannot be presigned is still
// listed, just without one.
func GetDocumentsHandler(c echo.Context) error {
	type documentEntry struct {
		pgdb.Document
		DownloadURL string `json:"download_url,omitempty"`
	}

	type getDocumentsResponse struct {
		Message   string          `json:"message,omitempty"`
		Documents []documentEntry `json:"documents"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	s3Client := c.(*middleware.AppContext).App.S3
	q := pgdb.New(conn)

	documents, err := q.ListDocuments(ctx, user.UserID)
	if err != nil {
		logger.Error("Failed to list documents", "err", err)
		return c.JSON(http.StatusInternalServerError, getDocumentsResponse{
			Message: "Internal server error",
		})
	}

	entries := make([]documentEntry, 0, len(documents))
	for _, document := range documents {
		entry := documentEntry{Document: document}
		link, err := storage.GenerateDownloadLink(ctx, s3Client, document.FileKey)
		if err != nil {
			logger.Warn("Failed to presign download link", "document_id", document.PublicID, "err", err)
		} else {
			entry.DownloadURL = link
		}
		entries = append(entries, entry)
	}

	return c.JSON(http.StatusOK, getDocumentsResponse{
		Documents: entries,
	})
}
