package main

import (
	"time"

	"go.uber.org/zap"

	"projectboard/internal/config"
	"projectboard/internal/db"
	"projectboard/internal/handler"
	"projectboard/internal/httpserver"
	"projectboard/internal/mq"
	redisclient "projectboard/internal/redis"
	"projectboard/internal/repository"
	"projectboard/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()
	userCache := redisclient.NewUserCache(rdb, time.Duration(cfg.Redis.UserCacheTTLSeconds)*time.Second, logger)

	// Init RabbitMQ producer
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("Failed to init producer", zap.Error(err))
	}
	defer producer.Close()

	// Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, logger)
	taskRepo := repository.NewTaskRepository(dbConn, logger)
	commentRepo := repository.NewCommentRepository(dbConn)

	// Init services
	authService := service.NewAuthService(userRepo, userCache, producer, cfg.JWT.Secret, logger)
	projectService := service.NewProjectService(projectRepo, taskRepo, commentRepo, producer, cfg.Projects.CascadeDelete, logger)
	taskService := service.NewTaskService(taskRepo, projectRepo, producer, logger)
	commentService := service.NewCommentService(commentRepo, producer, logger)

	// Init handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(authService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		userHandler,
		projectHandler,
		taskHandler,
		commentHandler,
		authService,
		cfg.JWT.Secret,
		dbConn,
		logger,
	)

	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
