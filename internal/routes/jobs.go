package routes

import (
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/handlers"
	"github.com/gin-gonic/gin"
)

func RegisterJobRoutes(r gin.IRouter) {
	jobs := r.Group("/jobs")
	{
		jobs.GET("", handlers.ListJobs)
		jobs.GET("/:id", handlers.GetJob)
	}
}
