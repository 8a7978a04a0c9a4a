package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salesboard-lab/salesboard/internal/core/errs"
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	status DatasetStatus
}

// DatasetStatus reports readiness of the loaded dataset for the health
// endpoint.
type DatasetStatus interface {
	Records() int
}

func New(addr string, status DatasetStatus, mode string) *Server {
	// Set Gin mode based on configuration
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(RequestID())

	s := &Server{
		Engine: r,
		Addr:   addr,
		status: status,
	}

	r.GET("/health", s.healthHandler)

	return s
}

// RequestID stamps every request with a unique ID, echoed in the
// X-Request-ID response header for log correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	if s.status == nil || s.status.Records() == 0 {
		c.JSON(http.StatusServiceUnavailable, errs.ErrorResponse{
			ErrorType: errs.HttpDatasetNotReady,
			Message:   "dataset not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"records": s.status.Records(),
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("Starting HTTP Server...", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("Stopping HTTP Server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP Server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
