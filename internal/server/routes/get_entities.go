package routes

import (
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"
	storepgx "github.com/argus-intel/argus/backend/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

func GetEntitiesHandler(c echo.Context) error {
	type getEntitiesResponse struct {
		Message  string          `json:"message,omitempty"`
		Entities []common.Entity `json:"entities"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	store := storepgx.NewStore(conn)

	entities, err := store.ListEntities(ctx, user.UserID)
	if err != nil {
		logger.Error("Failed to list entities", "err", err)
		return c.JSON(http.StatusInternalServerError, getEntitiesResponse{
			Message: "Internal server error",
		})
	}
	if entities == nil {
		entities = []common.Entity{}
	}

	return c.JSON(http.StatusOK, getEntitiesResponse{
		Entities: entities,
	})
}
