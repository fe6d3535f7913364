// Package admin exposes an optional introspection and control surface over
// a running dataflow graph: liveness, topology snapshots, frontier probes,
// and a Server-Sent Events stream of output activity. None of it is part of
// the core engine — a host wires it in if it wants a network-facing view
// of the graph it's driving.
package admin

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kbukum/difflow/auth/jwt"
	"github.com/kbukum/difflow/buildinfo"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/logger"
	"github.com/kbukum/difflow/resilience"
	"github.com/kbukum/difflow/sse"
	"github.com/kbukum/difflow/version"
)

// Prober is satisfied by any *graph.OutputHandle[T], regardless of T:
// ProbeFrontierLessThan's signature doesn't depend on the handle's element
// type, so the admin surface can probe a handle's frontier without caring
// what flows through the output it's watching.
type Prober interface {
	ProbeFrontierLessThan(target version.Frontier) bool
	Frontier() version.Frontier
}

// Server is the admin HTTP surface: a Gin engine over a fixed set of
// introspection routes, plus an SSE hub for streaming output activity.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	g          *graph.Graph
	hub        *sse.Hub
	probers    map[string]Prober
	rateLimit  *resilience.RateLimiter
	tokens     *jwt.Service[*Claims]
	cfg        *Config
	log        *logger.Logger

	startedAt time.Time
}

// New builds an admin server over g. hub may be nil, in which case
// /events responds 404 instead of streaming. If cfg.JWTEnabled, every
// route but /healthz and /version requires a Bearer token signed by the
// server's own token service — mint one with Server.IssueToken.
func New(cfg *Config, g *graph.Graph, hub *sse.Hub, log *logger.Logger) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	s := &Server{
		httpServer: httpServer,
		engine:     engine,
		g:          g,
		hub:        hub,
		probers:    make(map[string]Prober),
		cfg:        cfg,
		log:        log.WithComponent("admin"),
		startedAt:  time.Now(),
	}
	if cfg.RateLimitPerSecond > 0 {
		s.rateLimit = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Name:  "admin.mutating",
			Rate:  cfg.RateLimitPerSecond,
			Burst: cfg.RateLimitBurst,
		})
	}
	if cfg.JWTEnabled {
		tokens, err := newTokenService(cfg)
		if err != nil {
			return nil, err
		}
		s.tokens = tokens
	}

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/graph", s.authenticated(s.handleGraphTopology))
	s.engine.GET("/probe", s.authenticated(s.handleProbe))
	s.engine.GET("/events", s.authenticated(s.handleEvents))
	s.engine.POST("/step", s.authenticated(s.rateLimited(s.handleStep)))
}

// authenticated wraps a handler with JWT validation, if enabled.
func (s *Server) authenticated(h gin.HandlerFunc) gin.HandlerFunc {
	if s.tokens == nil {
		return h
	}
	return func(c *gin.Context) {
		authMiddleware(authValidator{s.tokens})(c)
		if c.IsAborted() {
			return
		}
		h(c)
	}
}

// authValidator adapts *jwt.Service[*Claims] to auth.TokenValidator.
type authValidator struct {
	svc *jwt.Service[*Claims]
}

func (v authValidator) ValidateToken(token string) (any, error) {
	return v.svc.Parse(token)
}

// rateLimited wraps a handler with the configured rate limiter, if any.
func (s *Server) rateLimited(h gin.HandlerFunc) gin.HandlerFunc {
	if s.rateLimit == nil {
		return h
	}
	return func(c *gin.Context) {
		if !s.rateLimit.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": resilience.ErrRateLimited.Error()})
			return
		}
		h(c)
	}
}

// Engine returns the underlying Gin engine, for tests and additional route
// registration by a host.
func (s *Server) Engine() *gin.Engine { return s.engine }

// RegisterProber makes an output handle's frontier reachable at
// GET /probe?output=<name>&frontier=... under the given name.
func (s *Server) RegisterProber(name string, p Prober) {
	s.probers[name] = p
}

// Start binds the listen address and begins serving in a background
// goroutine. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("admin: failed to bind %s: %w", s.httpServer.Addr, err)
	}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("admin server error", map[string]interface{}{"error": err.Error()})
		}
	}()
	s.log.Info("admin server started", map[string]interface{}{"addr": s.httpServer.Addr})
	return nil
}

// Stop gracefully shuts the server down with a bounded deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin: shutdown error: %w", err)
	}
	return nil
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "up",
		"uptime": time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	v := buildinfo.GetVersionInfo()
	c.JSON(http.StatusOK, gin.H{
		"version":    v.Version,
		"git_commit": v.GitCommit,
		"git_branch": v.GitBranch,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
	})
}

func (s *Server) handleStep(c *gin.Context) {
	progressed, err := s.g.Step(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progressed": progressed})
}
