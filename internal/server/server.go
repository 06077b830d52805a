package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/config"
	"github.com/lutyjj/photkey-server/internal/geo"
	"github.com/lutyjj/photkey-server/internal/handler"
	"github.com/lutyjj/photkey-server/internal/repository"
	"github.com/lutyjj/photkey-server/internal/service"
	"github.com/lutyjj/photkey-server/internal/storage"
)

type Server struct {
	httpServer *http.Server
	repo       repository.PhotoRepository
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(log))

	repo, err := repository.NewPhotoRepository(cfg.App.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo repository: %w", err)
	}

	content, err := newContentStore(cfg, log)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to create content store: %w", err)
	}

	resolver := geo.NewDecoder(&cfg.Geo, log)
	photoService := service.NewPhotoService(repo, content, resolver, cfg, log)
	h := handler.NewHandler(photoService, cfg, log)

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/photos", h.SavePhoto)
		api.GET("/photos", h.GetPhotos)
		api.GET("/photos/search", h.ExistsByName)
		api.GET("/photos/:name", h.GetSrcByName)
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        router,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		repo: repo,
		cfg:  cfg,
		log:  log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.App.StorageBackend))

	return server, nil
}

func newContentStore(cfg *config.Config, log *zap.Logger) (storage.ContentStore, error) {
	if cfg.App.StorageBackend == "s3" {
		return storage.NewS3Store(&cfg.S3, log)
	}
	return storage.NewFSStore(log), nil
}

func (s *Server) Run() error {
	s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return s.repo.Close()
}

// requestID tags every request with an id for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("Request handled",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
