package router

import (
	"github.com/labstack/echo/v4"

	"vintageCRM/internal/rest"
)

func SetupRunRoutes(api *echo.Group, handler *rest.RunHandler) {
	runs := api.Group("/runs")

	runs.POST("", handler.TriggerRun)
	runs.GET("", handler.ListRuns)
	runs.GET("/latest", handler.LatestRun)
	runs.GET("/:id", handler.GetRun)
	runs.GET("/:id/next-actions", handler.ListNextActions)
	runs.GET("/:id/violations", handler.ListViolations)
	runs.GET("/:id/recommendations", handler.ListRecommendations)
	runs.PATCH("/:id/recommendations/:rec_id/approval", handler.UpdateRecommendationApproval)
}

func SetupCampaignRoutes(api *echo.Group, handler *rest.CampaignHandler) {
	campaigns := api.Group("/campaigns")

	campaigns.POST("/batches", handler.CreateBatch)
}

func SetupClientRoutes(api *echo.Group, handler *rest.ClientHandler) {
	clients := api.Group("/clients")

	clients.GET("", handler.ListClients)
	clients.GET("/:code", handler.GetClient)

	distributions := api.Group("/distributions")

	distributions.GET("/segments", handler.SegmentDistribution)
	distributions.GET("/clusters", handler.ClusterDistribution)
}

func SetupCatalogRoutes(api *echo.Group, handler *rest.CatalogHandler) {
	products := api.Group("/products")

	products.GET("", handler.ListProducts)
}
