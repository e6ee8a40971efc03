package server

import (
	"net/http"

	authHttp "github.com/reelmaker/reelmaker-backend/internal/auth/delivery/http"
	authRepository "github.com/reelmaker/reelmaker-backend/internal/auth/repository"
	authUsecase "github.com/reelmaker/reelmaker-backend/internal/auth/usecase"
	"github.com/reelmaker/reelmaker-backend/internal/middleware"
	projectsHttp "github.com/reelmaker/reelmaker-backend/internal/projects/delivery/http"
	projectsRepository "github.com/reelmaker/reelmaker-backend/internal/projects/repository"
	projectsUsecase "github.com/reelmaker/reelmaker-backend/internal/projects/usecase"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	aRepo := authRepository.NewAuthRepo(s.db)
	pRepo := projectsRepository.NewProjectRepo(s.db)
	pAWSRepo := projectsRepository.NewAwsRepository(s.s3Client, s.preSignClient)
	pRedisRepo := projectsRepository.NewProjectRedisRepo(s.redisClient, s.cfg.Redis.ProgressKey)

	authUC := authUsecase.NewAuthUseCase(s.cfg, aRepo, s.logger)
	projectUC := projectsUsecase.NewProjectUseCase(s.cfg, pRepo, pRedisRepo, pAWSRepo, s.logger)

	authHandlers := authHttp.NewAuthHandler(s.cfg, authUC, s.logger)
	projectHandlers := projectsHttp.NewProjectHandler(s.cfg, projectUC, s.logger)

	mw := middleware.NewMiddlewareManager(authUC, s.cfg, []string{"*"}, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	authGroup := v1.Group("/auth")
	projectGroup := v1.Group("/projects")

	authHttp.MapAuthRoutes(authGroup, authHandlers, mw)
	projectsHttp.MapProjectRoutes(projectGroup, projectHandlers, mw)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
