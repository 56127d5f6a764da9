package routes

import (
	"fmt"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/queue"
	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/storage"
	"github.com/argus-intel/argus/backend/internal/util"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadDocumentsHandler stores uploaded files (multipart/form-data)
// and queues each for text extraction and mention scanning.
func UploadDocumentsHandler(c echo.Context) error {
	type uploadDocumentsResponse struct {
		Message   string          `json:"message"`
		Documents []pgdb.Document `json:"documents,omitempty"`
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{
			Message: "No files provided",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	s3Client := c.(*middleware.AppContext).App.S3
	conn := c.(*middleware.AppContext).App.DBConn
	q := pgdb.New(conn)
	ch := c.(*middleware.AppContext).App.Queue

	documents := make([]pgdb.Document, 0, len(uploads))
	for _, file := range uploads {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, uploadDocumentsResponse{
				Message: "Could not open file",
			})
		}
		defer src.Close()

		publicID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, uploadDocumentsResponse{
				Message: "Internal server error",
			})
		}
		key, err := storage.PutFile(
			ctx,
			s3Client,
			fmt.Sprintf("users/%d/documents", user.UserID),
			file.Filename,
			publicID,
			src,
		)
		if err != nil {
			logger.Error("Failed to upload file", "name", file.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadDocumentsResponse{
				Message: "Internal server error",
			})
		}

		document, err := q.CreateDocument(ctx, pgdb.CreateDocumentParams{
			PublicID:    publicID,
			OwnerID:     user.UserID,
			Name:        file.Filename,
			FileKey:     key,
			ContentType: file.Header.Get("Content-Type"),
			Status:      pgdb.DocumentStatusProcessing,
		})
		if err != nil {
			logger.Error("Failed to create document", "name", file.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadDocumentsResponse{
				Message: "Internal server error",
			})
		}
		documents = append(documents, document)

		msg := util.ConvertStructToJson(queue.DocumentIngestMsg{
			OwnerID:    user.UserID,
			DocumentID: document.ID,
		})
		if err := queue.PublishFIFO(ch, queue.DocumentIngestQueue, []byte(msg)); err != nil {
			logger.Error("Failed to publish to document_ingest", "document_id", document.PublicID, "err", err)
		}
	}

	return c.JSON(http.StatusCreated, uploadDocumentsResponse{
		Message:   "Documents queued for processing",
		Documents: documents,
	})
}
