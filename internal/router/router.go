package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskforge-dev/taskforge/internal/handlers"
	"github.com/taskforge-dev/taskforge/internal/middleware"
	"github.com/taskforge-dev/taskforge/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Generous limit; only meant to slow down credential guessing.
	authLimiter := middleware.NewRateLimiter(5, 10)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.POST("/token/refresh/", handlers.RefreshToken)

		users := api.Group("/users")
		{
			users.POST("/register/", authLimiter.Handler(), handlers.RegisterUser)
			users.POST("/login/", authLimiter.Handler(), handlers.LoginUser)

			authed := users.Group("", middleware.AuthMiddleware())
			{
				authed.GET("/", handlers.ListUsers)
				authed.GET("/me/", handlers.Me)
				authed.GET("/:id", handlers.GetUser)
				authed.PATCH("/:id", handlers.UpdateUser)
				authed.DELETE("/:id", handlers.DeleteUser)
			}
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.GET("/", handlers.ListProjects)
			projects.POST("/", handlers.CreateProject)
			projects.GET("/:id", handlers.GetProject)
			projects.PATCH("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)
		}

		members := api.Group("/project-members", middleware.AuthMiddleware())
		{
			members.GET("/", handlers.ListProjectMembers)
			members.POST("/", handlers.CreateProjectMember)
			members.GET("/:id", handlers.GetProjectMember)
			members.PATCH("/:id", handlers.UpdateProjectMember)
			members.DELETE("/:id", handlers.DeleteProjectMember)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("/", handlers.ListTasks)
			tasks.POST("/", handlers.CreateTask)
			tasks.GET("/:id", handlers.GetTask)
			tasks.PATCH("/:id", handlers.UpdateTask)
			tasks.DELETE("/:id", handlers.DeleteTask)
		}

		comments := api.Group("/comments", middleware.AuthMiddleware())
		{
			comments.GET("/", handlers.ListComments)
			comments.POST("/", handlers.CreateComment)
			comments.GET("/:id", handlers.GetComment)
			comments.PATCH("/:id", handlers.UpdateComment)
			comments.DELETE("/:id", handlers.DeleteComment)
		}
	}

	return r
}
