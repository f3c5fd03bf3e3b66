package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"coap-adapter-go/internal/platform/errors"
	"coap-adapter-go/internal/platform/logging"
)

const defaultCloseTimeout = 5 * time.Second

// Options configures the HTTP router builder.
type Options struct {
	Addr     string
	LogLevel string
	Logger   *logging.Logger
}

// Router bundles the gin engine and the versioned API group.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	addr   string
	logger *logging.Logger
}

// Build constructs a gin engine with recovery, request logging and CORS.
func Build(opts Options) *Router {
	if opts.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if opts.Logger != nil {
		engine.Use(loggingMiddleware(opts.Logger))
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	return &Router{
		Engine: engine,
		API:    engine.Group("/api/v1"),
		addr:   opts.Addr,
		logger: opts.Logger,
	}
}

// Start serves HTTP until ctx is cancelled.
func (r *Router) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    r.addr,
		Handler: r.Engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultCloseTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if r.logger != nil {
		r.logger.InfoTag("HTTP", "management API on %s", r.addr)
	}

	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(errors.KindTransport, "http.start", "serving management API", err)
	}
	return nil
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
