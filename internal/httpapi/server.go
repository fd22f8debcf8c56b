// Package httpapi exposes the bakery store over HTTP with gin.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

// HeaderRequestID carries the per-request id in both directions.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "request_id"

const homePage = "<h1>Bakery GET-POST-PATCH-DELETE API</h1>"

// Options configures a Server. The zero value is usable.
type Options struct {
	// Logger receives one line per request and every internal error.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins []string
}

// Server wires the HTTP routes to a types.Store.
type Server struct {
	store  types.Store
	logger *slog.Logger
	engine *gin.Engine
	cors   *cors.Cors
}

// New builds the gin engine and registers every route.
func New(store types.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:  store,
		logger: logger,
		engine: gin.New(),
	}
	if len(opts.AllowedOrigins) > 0 {
		s.cors = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", HeaderRequestID},
			ExposedHeaders: []string{HeaderRequestID},
		})
	}

	s.engine.Use(requestID(), requestLogger(logger), gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.home)
	s.engine.GET("/health", s.health)

	s.engine.GET("/bakeries", s.listBakeries)
	s.engine.GET("/bakeries/:id", s.getBakery)
	s.engine.PATCH("/bakeries/:id", s.updateBakery)

	s.engine.GET("/baked_goods/by_price", s.bakedGoodsByPrice)
	s.engine.GET("/baked_goods/most_expensive", s.mostExpensiveBakedGood)
	s.engine.POST("/baked_goods", s.createBakedGood)
	s.engine.DELETE("/baked_goods/:id", s.deleteBakedGood)
}

// Handler returns the root http.Handler, wrapped with CORS when configured.
func (s *Server) Handler() http.Handler {
	if s.cors == nil {
		return s.engine
	}
	return s.cors.Handler(s.engine)
}

func (s *Server) home(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(homePage))
}

// health reports the latest applied migration, or 503 when the store cannot
// answer.
func (s *Server) health(c *gin.Context) {
	records, err := s.store.AppliedMigrations(c.Request.Context())
	if err != nil {
		s.logger.Warn("health check failed", slog.String(requestIDKey, c.GetString(requestIDKey)), slog.Any("error", err))
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	version := ""
	if len(records) > 0 {
		version = records[len(records)-1].Version
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok", "schema_version": version})
}

// parseID reads the :id path parameter. Anything but a plain run of digits
// is reported as not found, like an unmatched route.
func parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	if raw == "" || raw[0] < '0' || raw[0] > '9' {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

// fail writes the response for a store error. ErrNotFound becomes a 404
// with notFound as the message; anything unexpected is logged and hidden
// behind a 500.
func (s *Server) fail(c *gin.Context, err error, notFound string) {
	if errors.Is(err, types.ErrNotFound) {
		c.IndentedJSON(http.StatusNotFound, errorBody(notFound))
		return
	}
	s.logger.Error("request failed",
		slog.String(requestIDKey, c.GetString(requestIDKey)),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	c.IndentedJSON(http.StatusInternalServerError, errorBody("internal server error"))
}

// requestID echoes an incoming X-Request-ID or assigns a UUID v7.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// requestLogger writes one structured line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.String(requestIDKey, c.GetString(requestIDKey)),
		)
	}
}
