package routes

import (
	"errors"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/common"
	pgdb "github.com/argus-intel/argus/backend/pkg/db/pgx"
	"github.com/argus-intel/argus/backend/pkg/logger"
	storepgx "github.com/argus-intel/argus/backend/pkg/store/pgx"
	"github.com/argus-intel/argus/backend/pkg/track"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

const defaultMentionPageSize = 50

// GetMentionsHandler lists the stored mentions of one tracked entity,
// newest first. The name is resolved with the same fuzzy matching used
// everywhere reads resolve names.
func GetMentionsHandler(c echo.Context) error {
	type getMentionsParams struct {
		Name   string `param:"name" validate:"required"`
		Limit  int32  `query:"limit"`
		Offset int32  `query:"offset"`
	}

	type getMentionsResponse struct {
		Message  string                 `json:"message,omitempty"`
		Entity   string                 `json:"entity,omitempty"`
		Total    int64                  `json:"total"`
		Mentions []common.MentionRecord `json:"mentions"`
	}

	params := new(getMentionsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getMentionsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getMentionsResponse{
			Message: "Invalid request params",
		})
	}
	if params.Limit <= 0 {
		params.Limit = defaultMentionPageSize
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	registry := newRegistry(conn)

	entity, err := registry.Resolve(ctx, user.UserID, params.Name)
	if err != nil {
		if errors.Is(err, track.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, getMentionsResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Failed to resolve entity", "name", params.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getMentionsResponse{
			Message: "Internal server error",
		})
	}

	store := storepgx.NewStore(conn)
	mentions, err := store.ListMentionRecords(ctx, user.UserID, entity.ID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list mentions", "entity", entity.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getMentionsResponse{
			Message: "Internal server error",
		})
	}
	if mentions == nil {
		mentions = []common.MentionRecord{}
	}

	total, err := pgdb.New(conn).CountEntityMentions(ctx, pgdb.GetEntityMentionsParams{
		OwnerID:  user.UserID,
		EntityID: entity.ID,
	})
	if err != nil {
		logger.Error("Failed to count mentions", "entity", entity.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getMentionsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getMentionsResponse{
		Entity:   entity.Name,
		Total:    total,
		Mentions: mentions,
	})
}
