package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/controllers"
)

// RegisterGraphQLRoutes mounts the GraphQL endpoint. extra middleware (rate
// limiting) applies to /graphql only.
func RegisterGraphQLRoutes(r *gin.Engine, gc *controllers.GraphQLController, extra ...gin.HandlerFunc) {
	group := r.Group("/graphql", extra...)
	group.POST("", gc.Post)
	group.GET("", gc.Get)
}

// RegisterHealthRoutes mounts GET /health.
func RegisterHealthRoutes(r *gin.Engine, hc *controllers.HealthController) {
	r.GET("/health", hc.Health)
}
