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

// RegisterEntityHandler registers a new tracked entity and backfills
// mentions of it from every source the owner already has.
func RegisterEntityHandler(c echo.Context) error {
	type registerEntityBody struct {
		Name     string         `json:"name" validate:"required"`
		Type     string         `json:"entity_type"`
		Metadata map[string]any `json:"metadata"`
	}

	type registerEntityResponse struct {
		Message      string         `json:"message"`
		Entity       *common.Entity `json:"entity,omitempty"`
		MentionCount int            `json:"mention_count"`
		Warning      string         `json:"warning,omitempty"`
	}

	data := new(registerEntityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, registerEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, registerEntityResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	registry := newRegistry(conn)

	result, err := registry.Register(ctx, track.RegisterParams{
		OwnerID:  user.UserID,
		Name:     data.Name,
		Type:     data.Type,
		Metadata: data.Metadata,
	})
	if err != nil {
		if errors.Is(err, track.ErrDuplicateEntity) {
			return c.JSON(http.StatusConflict, registerEntityResponse{
				Message: "Entity is already tracked",
			})
		}
		logger.Error("Failed to register entity", "name", data.Name, "err", err)
		return c.JSON(http.StatusInternalServerError, registerEntityResponse{
			Message: "Internal server error",
		})
	}

	resp := registerEntityResponse{
		Message:      "Entity registered successfully",
		Entity:       &result.Entity,
		MentionCount: result.MentionCount,
	}
	if result.BackfillErr != nil {
		resp.Warning = "Entity registered but the mention backfill failed; existing sources were not scanned"
	}

	return c.JSON(http.StatusCreated, resp)
}
