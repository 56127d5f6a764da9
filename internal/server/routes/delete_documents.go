package routes

import (
	"errors"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/storage"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// DeleteDocumentHandler removes a document, its stored file and all
// chunks and mentions derived from it.
func DeleteDocumentHandler(c echo.Context) error {
	type deleteDocumentParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteDocumentResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteDocumentParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteDocumentResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteDocumentResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := pgdb.New(conn)

	document, err := q.GetDocumentByPublicID(ctx, pgdb.GetDocumentByPublicIDParams{
		OwnerID:  user.UserID,
		PublicID: params.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, deleteDocumentResponse{
				Message: "Document not found",
			})
		}
		logger.Error("Failed to load document", "document_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDocumentResponse{
			Message: "Internal server error",
		})
	}

	// Chunks and mentions cascade with the document row.
	if err := q.DeleteDocument(ctx, pgdb.DeleteDocumentParams{
		OwnerID: user.UserID,
		ID:      document.ID,
	}); err != nil {
		logger.Error("Failed to delete document", "document_id", document.PublicID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDocumentResponse{
			Message: "Internal server error",
		})
	}

	s3Client := c.(*middleware.AppContext).App.S3
	if err := storage.DeleteFile(ctx, s3Client, document.FileKey); err != nil {
		logger.Warn("Failed to delete stored file", "document_id", document.PublicID, "err", err)
	}

	return c.JSON(http.StatusOK, deleteDocumentResponse{
		Message: "Document deleted",
	})
}
