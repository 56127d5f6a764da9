package routes

import (
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetArticlesHandler(c echo.Context) error {
	type getArticlesResponse struct {
		Message  string             `json:"message,omitempty"`
		Articles []pgdb.NewsArticle `json:"articles"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn

	articles, err := pgdb.New(conn).ListArticles(ctx, user.UserID)
	if err != nil {
		logger.Error("Failed to list articles", "err", err)
		return c.JSON(http.StatusInternalServerError, getArticlesResponse{
			Message: "Internal server error",
		})
	}
	if articles == nil {
		articles = []pgdb.NewsArticle{}
	}

	return c.JSON(http.StatusOK, getArticlesResponse{
		Articles: articles,
	})
}
