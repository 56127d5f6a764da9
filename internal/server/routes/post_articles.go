package routes

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/argus-intel/argus/backend/internal/queue"
	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/util"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// AddArticleHandler registers a news article by URL and queues it for
// scraping and mention scanning.
func AddArticleHandler(c echo.Context) error {
	type addArticleBody struct {
		URL string `json:"url" validate:"required,url"`
	}

	type addArticleResponse struct {
		Message string            `json:"message"`
		Article *pgdb.NewsArticle `json:"article,omitempty"`
	}

	data := new(addArticleBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, addArticleResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, addArticleResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := pgdb.New(conn)

	publicID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, addArticleResponse{
			Message: "Internal server error",
		})
	}

	sourceSite := ""
	if parsed, err := url.Parse(data.URL); err == nil {
		sourceSite = parsed.Hostname()
	}

	article, err := q.CreateArticle(ctx, pgdb.CreateArticleParams{
		PublicID:   publicID,
		OwnerID:    user.UserID,
		Url:        data.URL,
		SourceSite: sourceSite,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.JSON(http.StatusConflict, addArticleResponse{
				Message: "Article URL is already registered",
			})
		}
		logger.Error("Failed to create article", "url", data.URL, "err", err)
		return c.JSON(http.StatusInternalServerError, addArticleResponse{
			Message: "Internal server error",
		})
	}

	msg := util.ConvertStructToJson(queue.ArticleIngestMsg{
		OwnerID:   user.UserID,
		ArticleID: article.ID,
	})
	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.ArticleIngestQueue, []byte(msg)); err != nil {
		logger.Error("Failed to publish to article_ingest", "article_id", article.PublicID, "err", err)
	}

	return c.JSON(http.StatusCreated, addArticleResponse{
		Message: "Article queued for processing",
		Article: &article,
	})
}
