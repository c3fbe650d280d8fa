package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"projectboard/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
	commentHandler *handler.CommentHandler,
	users UserResolver,
	jwtSecret string,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger), Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "db_not_ready"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server running"})
	})

	// Public
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Protected
	auth := api.Group("/")
	auth.Use(AuthMiddleware(jwtSecret, users))
	{
		auth.GET("/users", userHandler.GetUsers)

		auth.POST("/projects", projectHandler.CreateProject)
		auth.GET("/projects", projectHandler.ListProjects)
		auth.GET("/projects/:id", projectHandler.GetProject)
		auth.PATCH("/projects/:id", projectHandler.UpdateProject)
		auth.DELETE("/projects/:id", projectHandler.DeleteProject)

		auth.POST("/projects/:id/tasks", taskHandler.CreateTask)
		auth.GET("/projects/:id/tasks", taskHandler.ListTasks)
		auth.PATCH("/tasks/:id/status", taskHandler.UpdateTaskStatus)
		auth.DELETE("/tasks/:id", taskHandler.DeleteTask)

		auth.POST("/tasks/:id/comments", commentHandler.CreateComment)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
