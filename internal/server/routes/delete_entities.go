package routes

import (
	"errors"
	"net/http"

	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/pkg/logger"
	"github.com/argus-intel/argus/backend/pkg/track"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// DeleteEntityHandler stops tracking an entity and removes its stored
// mentions. The name must match exactly after case folding; fuzzy
// matching is not applied to deletes.
func DeleteEntityHandler(c echo.Context) error {
	type deleteEntityParams struct {
		Name string `param:"name" validate:"required"`
	}

	type deleteEntityResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteEntityParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteEntityResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteEntityResponse{
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

	if err := registry.Delete(ctx, user.UserID, params.Name); err != nil {
		if errors.Is(err, track.ErrEntityNotFound) {
			return c.JSON(http.StatusNotFound, deleteEntityResponse{
				Message: "Entity not found",
			})
		}
		logger.Error("Failed to delete entity", "name", params.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteEntityResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteEntityResponse{
		Message: "Entity deleted",
	})
}
