package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

const (
	// RequestIDHeader carries the request correlation ID in both directions.
	RequestIDHeader = "X-Request-ID"

	// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
	DefaultMaxBodyBytes int64 = 1 << 20

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	requestIDKey      = "request_id"
)

// HTTPConfig tunes the HTTP API.
type HTTPConfig struct {
	MaxBodyBytes int64
}

// TestGenerator produces a pytest module for a snippet.
type TestGenerator interface {
	Generate(ctx context.Context, snippet m.Snippet) (m.GenerateResult, error)
}

// CodeClassifier decides whether text is parseable Python.
type CodeClassifier interface {
	IsCode(ctx context.Context, text string) bool
}

// SkeletonSynthesizer builds the offline test skeleton for a snippet.
type SkeletonSynthesizer interface {
	Synthesize(ctx context.Context, code string) string
}

// HTTPController exposes skeleton generation over HTTP.
type HTTPController struct {
	generator   TestGenerator
	classifier  CodeClassifier
	synthesizer SkeletonSynthesizer
	config      HTTPConfig
}

type generateRequest struct {
	Code *string `json:"code" binding:"required"`
}

type classifyRequest struct {
	Text *string `json:"text" binding:"required"`
}

type generateResponse struct {
	TestCode string   `json:"test_code"`
	Source   m.Origin `json:"source"`
	Warning  string   `json:"warning,omitempty"`
}

// NewHTTPController creates an HTTPController.
func NewHTTPController(
	generator TestGenerator,
	classifier CodeClassifier,
	synthesizer SkeletonSynthesizer,
	config HTTPConfig,
) *HTTPController {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &HTTPController{
		generator:   generator,
		classifier:  classifier,
		synthesizer: synthesizer,
		config:      config,
	}
}

// Handler builds the gin engine serving the API.
func (h *HTTPController) Handler() http.Handler {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		requestID(),
		accessLog(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
			ExposeHeaders:   []string{RequestIDHeader},
			MaxAge:          12 * time.Hour,
		}),
		bodyLimit(h.config.MaxBodyBytes),
	)

	engine.GET("/healthz", h.health)
	engine.POST("/generate-test", h.generateTest)
	engine.POST("/synthesize", h.synthesize)
	engine.POST("/classify", h.classify)

	return engine
}

// Serve runs the API on listener until ctx is cancelled, then shuts down gracefully.
func (h *HTTPController) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		slog.InfoContext(ctx, "http server listening", "addr", listener.Addr().String())

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}

		slog.InfoContext(ctx, "http server stopped")

		return nil
	})

	return group.Wait()
}

func (h *HTTPController) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPController) generateTest(c *gin.Context) {
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	result, err := h.generator.Generate(ctx, m.Snippet{Code: *req.Code})
	if err != nil {
		slog.ErrorContext(ctx, "generate test failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, generateResponse{
		TestCode: result.TestCode,
		Source:   result.Origin,
		Warning:  result.Warning,
	})
}

func (h *HTTPController) synthesize(c *gin.Context) {
	var req generateRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, generateResponse{
		TestCode: h.synthesizer.Synthesize(c.Request.Context(), *req.Code),
		Source:   m.OriginFallback,
	})
}

func (h *HTTPController) classify(c *gin.Context) {
	var req classifyRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_code": h.classifier.IsCode(c.Request.Context(), *req.Text)})
}

func bindJSON(c *gin.Context, target any) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})

		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})

	return false
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(slogctx.Append(c.Request.Context(), requestIDKey, id))

		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency", time.Since(start),
		)
	}
}

func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
