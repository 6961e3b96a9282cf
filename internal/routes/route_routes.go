package routes

import (
	"github.com/gin-gonic/gin"

	"route_sentinel/internal/controllers"
)

// RouteRoutes registers route ingestion, analysis read and export endpoints.
func RouteRoutes(r *gin.Engine) {
	grp := r.Group("/routes")
	{
		grp.POST("", controllers.CreateRoute)
		grp.GET("", controllers.ListRoutes)
		grp.GET("/:id", controllers.GetRoute)
		grp.DELETE("/:id", controllers.DeleteRoute)

		grp.GET("/:id/overview", controllers.GetRouteOverview)
		grp.GET("/:id/turns", controllers.GetRouteTurns)
		grp.GET("/:id/signals", controllers.GetRouteSignals)
		grp.GET("/:id/facilities", controllers.GetRouteFacilities)
		grp.GET("/:id/facilities/nearest", controllers.GetNearestFacilities)
		grp.GET("/:id/export.kml", controllers.ExportRouteKML)
	}
}

// HealthRoutes registers the liveness endpoint.
func HealthRoutes(r *gin.Engine) {
	r.GET("/health", controllers.HealthCheck)
}
