package server

import (
	"github.com/argus-intel/argus/backend/internal/server/middleware"
	"github.com/argus-intel/argus/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api/v1", middleware.AuthMiddleware)

	// Entity routes
	apiRoutes.GET("/entities", routes.GetEntitiesHandler)
	apiRoutes.POST("/entities", routes.RegisterEntityHandler)
	apiRoutes.DELETE("/entities/:name", routes.DeleteEntityHandler)
	apiRoutes.GET("/entities/:name/mentions", routes.GetMentionsHandler)
	apiRoutes.GET("/entities/:name/relationships", routes.GetRelationshipsHandler)
	apiRoutes.GET("/entities/:name/contexts/:other", routes.GetContextsHandler)

	// Document routes
	apiRoutes.GET("/documents", routes.GetDocumentsHandler)
	apiRoutes.POST("/documents", routes.UploadDocumentsHandler)
	apiRoutes.DELETE("/documents/:id", routes.DeleteDocumentHandler)

	// Article routes
	apiRoutes.GET("/articles", routes.GetArticlesHandler)
	apiRoutes.POST("/articles", routes.AddArticleHandler)
	apiRoutes.DELETE("/articles/:id", routes.DeleteArticleHandler)
}
