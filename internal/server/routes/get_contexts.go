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

// GetContextsHandler lists the combined co-occurrence contexts backing
// the relationship between two tracked entities.
func GetContextsHandler(c echo.Context) error {
	type getContextsParams struct {
		Name  string `param:"name" validate:"required"`
		Other string `param:"other" validate:"required"`
	}

	type getContextsResponse struct {
		Message  string                       `json:"message,omitempty"`
		EntityA  string                       `json:"entity_a,omitempty"`
		EntityB  string                       `json:"entity_b,omitempty"`
		Contexts []common.CoOccurrenceContext `json:"contexts"`
	}

	params := new(getContextsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getContextsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getContextsResponse{
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

	target, err := registry.Resolve(ctx, user.UserID, params.Name)
	if err != nil {
		if errors.Is(err, track.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, getContextsResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Failed to resolve entity", "name", params.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getContextsResponse{
			Message: "Internal server error",
		})
	}

	other, err := registry.Resolve(ctx, user.UserID, params.Other)
	if err != nil {
		if errors.Is(err, track.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, getContextsResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Failed to resolve entity", "name", params.Other, "err", err)
		return c.JSON(http.StatusInternalServerError, getContextsResponse{
			Message: "Internal server error",
		})
	}

	contexts, err := newAnalyzer(conn).Contexts(ctx, user.UserID, target, other.ID)
	if err != nil {
		logger.Error("Failed to collect co-occurrence contexts", "entity_a", target.Name, "entity_b", other.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, getContextsResponse{
			Message: "Internal server error",
		})
	}
	if contexts == nil {
		contexts = []common.CoOccurrenceContext{}
	}

	return c.JSON(http.StatusOK, getContextsResponse{
		EntityA:  target.Name,
		EntityB:  other.Name,
		Contexts: contexts,
	})
}
