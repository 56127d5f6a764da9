package routes

import (
	"errors"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/logger"
	"github.com/argus-intel/argus/backend/pkg/track"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetRelationshipsHandler computes the co-mention relationship network
// around one tracked entity. The network is derived from stored
// mentions on every call; an entity without mentions yields an empty
// network, not an error.
func GetRelationshipsHandler(c echo.Context) error {
	type getRelationshipsParams struct {
		Name  string `param:"name" validate:"required"`
		Depth int    `query:"depth"`
	}

	type getRelationshipsResponse struct {
		Message string                      `json:"message,omitempty"`
		Entity  string                      `json:"entity,omitempty"`
		Network *common.RelationshipNetwork `json:"network,omitempty"`
	}

	params := new(getRelationshipsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getRelationshipsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getRelationshipsResponse{
			Message: "Invalid request params",
		})
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
			return c.JSON(http.StatusNotFound, getRelationshipsResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Failed to resolve entity", "name", params.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getRelationshipsResponse{
			Message: "Internal server error",
		})
	}

	network, err := newAnalyzer(conn).Network(ctx, user.UserID, entity, params.Depth)
	if err != nil {
		logger.Error("Failed to build relationship network", "entity", entity.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getRelationshipsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getRelationshipsResponse{
		Entity:  entity.Name,
		Network: &network,
	})
}
