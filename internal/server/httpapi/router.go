// Package httpapi exposes the service over HTTP and WebSocket using gin.
// Transport stays thin: request parsing, status mapping and the upgrade
// handshake live here, all semantics live in the services.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"assistant-service/internal/logging"
	"assistant-service/internal/server/push"
	"assistant-service/internal/server/services"
)

// Server wraps the gin engine with graceful shutdown.
type Server struct {
	engine *gin.Engine
	logger logging.Logger
}

func NewServer(users *services.UserService, tasks *services.TaskService, registry *push.Registry, logger logging.Logger) *Server {
	h := &handlers{
		users:    users,
		tasks:    tasks,
		registry: registry,
		logger:   logger.With("component", "httpapi"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), corsMiddleware())
	engine.HandleMethodNotAllowed = true

	engine.GET("/", h.root)
	engine.GET("/ws", h.websocket)

	assistant := engine.Group("/assistant")
	{
		assistant.POST("/register", h.register)
		assistant.POST("/login", h.login)
		assistant.POST("/refresh", h.refresh)
		assistant.POST("/logout", h.authRequired, h.logout)
		assistant.GET("/me", h.authRequired, h.me)
	}

	tasksGroup := engine.Group("/tasks", h.authRequired)
	{
		tasksGroup.POST("", h.createTask)
		tasksGroup.GET("", h.listTasks)
		tasksGroup.POST("/:id/complete", h.completeTask)
	}

	return &Server{engine: engine, logger: h.logger}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "http server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info(context.Background(), "http server stopped")
		return nil
	})

	return g.Wait()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
