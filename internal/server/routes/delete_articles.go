package routes

import (
	"errors"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// DeleteArticleHandler removes a registered article and all chunks and
// mentions derived from it.
func DeleteArticleHandler(c echo.Context) error {
	type deleteArticleParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteArticleResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteArticleParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteArticleResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteArticleResponse{
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

	article, err := q.GetArticleByPublicID(ctx, pgdb.GetArticleByPublicIDParams{
		OwnerID:  user.UserID,
		PublicID: params.ID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, deleteArticleResponse{
				Message: "Article not found",
			})
		}
		logger.Error("Failed to load article", "article_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteArticleResponse{
			Message: "Internal server error",
		})
	}

	// Chunks and mentions cascade with the article row.
	if err := q.DeleteArticle(ctx, pgdb.DeleteArticleParams{
		OwnerID: user.UserID,
		ID:      article.ID,
	}); err != nil {
		logger.Error("Failed to delete article", "article_id", article.PublicID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteArticleResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteArticleResponse{
		Message: "Article deleted",
	})
}
