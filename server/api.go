package server

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"

	"integral-solver/api"
	"integral-solver/config"
	"integral-solver/service"
	"integral-solver/service/stors/cachestor"
	"integral-solver/service/stors/historystor"
	"integral-solver/solver"
	"integral-solver/webembed"

	"github.com/bytedance/sonic"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/singleflight"
)

type Options struct {
	Config  *config.Config
	Solver  *solver.Solver
	Cache   cachestor.SolveCache
	History *historystor.Repository
	Bus     *service.Bus
}

type Server struct {
	cfg     *config.Config
	app     *fiber.App
	solver  *solver.Solver
	cache   cachestor.SolveCache
	history *historystor.Repository
	bus     *service.Bus
	feeds   *HubManager
	group   singleflight.Group

	solves   atomic.Int64
	failures atomic.Int64
}

// New wires the handlers. Nil Solver, Cache or Bus get defaults; a nil
// History disables /api/history.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{APIRPM: 120, BodyLimit: config.DefaultBodyLimit}
	}
	s := &Server{
		cfg:     cfg,
		solver:  opts.Solver,
		cache:   opts.Cache,
		history: opts.History,
		bus:     opts.Bus,
		feeds:   NewHubManager(),
	}
	if s.solver == nil {
		s.solver = solver.New(solver.WithMaxDepth(cfg.Solver.MaxDepth))
	}
	if s.cache == nil {
		s.cache = cachestor.Nop{}
	}
	if s.bus == nil {
		s.bus = service.NewBus()
	}
	s.bus.Subscribe(func(ev api.SolveEvent) { s.feeds.Broadcast(TopicAll, ev) })
	for t := solver.TechniqueBasic; t <= solver.TechniqueParts; t++ {
		topic := MethodSlug(t.String())
		s.bus.SubscribeMethod(t.String(), func(ev api.SolveEvent) { s.feeds.Broadcast(topic, ev) })
	}
	if s.history != nil {
		service.RecordHistory(s.bus, s.history)
	}
	s.app = s.routes()
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) routes() *fiber.App {
	bodyLimit := s.cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = config.DefaultBodyLimit
	}
	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		EnableTrustedProxyCheck: true,
		TrustedProxies: []string{
			"localhost",
			"127.0.0.1",
		},
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	loggerCfg := logger.ConfigDefault
	loggerCfg.Format = "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${queryParams} | ${error}\n"
	app.Use(logger.New(loggerCfg))

	app.Get("/health", s.handleHealth)
	app.Post("/solve", limiter.New(limiter.Config{
		Max: max(s.cfg.APIRPM, 2),
	}), s.handleSolve)

	rg := app.Group("/api")
	rg.Use(limiter.New(limiter.Config{
		Max: max(s.cfg.APIRPM, 2),
	}))
	if s.cfg.APIKeyAuth && len(s.cfg.APIKeys) > 0 {
		rg.Use(keyauth.New(keyauth.Config{
			KeyLookup: "header:X-API-Key",
			Validator: func(c *fiber.Ctx, key string) (bool, error) {
				hashedKey := sha256.Sum256([]byte(key))
				for _, k := range s.cfg.APIKeys {
					hashedAPIKey := sha256.Sum256([]byte(k))
					if subtle.ConstantTimeCompare(hashedKey[:], hashedAPIKey[:]) == 1 {
						return true, nil
					}
				}
				return false, keyauth.ErrMissingOrMalformedAPIKey
			},
		}))
	}
	rg.Get("/examples", s.handleExamples)
	rg.Get("/stats", s.handleStats)
	rg.Get("/history", s.handleHistory)
	rg.Get("/history/:id", s.handleHistoryEntry)
	rg.Delete("/cache", s.handlePurgeCache)
	rg.Get("/feed/:topic", s.handleFeedUpgrade)
	rg.Get("/feed/:topic", websocket.New(s.handleFeedConn))

	app.Use("/", filesystem.New(filesystem.Config{
		Root:         http.FS(webembed.Static),
		NotFoundFile: "index.html",
	}))
	return app
}

// errorHandler answers panics and unhandled errors on /solve in the solve
// response shape and everything else as {"error": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled request error", "path", c.Path(), "err", err)
	}
	if c.Path() == "/solve" {
		msg := "An unexpected error occurred"
		if fe != nil && code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
		return c.Status(code).JSON(api.Failure(msg))
	}
	msg := "internal server error"
	if fe != nil {
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// Serve listens on the configured address until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", ln.Addr().String())
		errCh <- s.app.Listener(ln)
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("API server stopped: %w", err)
	case <-ctx.Done():
	}
	slog.Info("API server is shutting down")
	s.feeds.CloseAll()
	if err := s.app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil {
		slog.Error("Failed to gracefully shutdown API server", "err", err)
		return err
	}
	slog.Info("API server shutdown successfully")
	return nil
}
