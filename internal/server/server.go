package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parascope/backend/internal/config"
	"github.com/parascope/backend/internal/database"
	"github.com/parascope/backend/internal/handlers"
	"github.com/parascope/backend/internal/middleware"
	"github.com/parascope/backend/internal/redisstore"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	handler *handlers.Handler
	log     *zap.Logger
}

// New assembles the HTTP server. voteLimiter may be nil when Redis is not
// configured.
func New(cfg *config.Config, db database.Service, voteLimiter *redisstore.VoteLimiter, log *zap.Logger) *http.Server {
	handler := handlers.NewHandler(db.GetDB(), cfg, voteLimiter, log)

	s := &Server{
		cfg:     cfg,
		db:      db,
		handler: handler,
		log:     log,
	}

	gin.SetMode(cfg.Server.Mode)
	router := s.RegisterRoutes()

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(s.log))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and metrics endpoints
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RateLimit(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst))
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)

		// Comment routes (public reads)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		// Topic routes (public reads)
		api.GET("/topics", s.handler.User.GetTopics)

		// User routes (public reads)
		api.GET("/users/:id", s.handler.User.GetUserProfile)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware([]byte(s.cfg.JWT.Secret)))
		{
			// Auth protected routes
			protected.GET("/me", s.handler.Auth.GetMe)

			// Vote routes
			protected.POST("/votes", s.handler.Vote.Vote)
			protected.GET("/votes/status", s.handler.Vote.Status)

			// Post protected routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)

			// Comment protected routes
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)
			protected.PUT("/comments/:commentId", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:commentId", s.handler.Comment.DeleteComment)

			// Topic protected routes
			protected.POST("/topics/:slug/follow", s.handler.User.FollowTopic)
			protected.DELETE("/topics/:slug/follow", s.handler.User.UnfollowTopic)

			// User protected routes
			protected.PUT("/users/me", s.handler.User.UpdateUserProfile)
		}
	}

	return r
}
