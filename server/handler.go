package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"integral-solver/api"
	"integral-solver/config"
	"integral-solver/service/stors/cachestor"
	"integral-solver/service/stors/historystor"
	"integral-solver/solver"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) handleSolve(c *fiber.Ctx) error {
	var req api.SolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(api.Failure("Error: invalid request body"))
	}
	if strings.TrimSpace(req.Expression) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(api.Failure("Error: " + solver.ErrEmptyExpression.Error()))
	}
	if utf8.RuneCountInString(req.Expression) > config.MaxExpressionLen {
		return c.Status(fiber.StatusBadRequest).JSON(api.Failure("Error: expression too long"))
	}
	slog.Info("Solving expression", "expression", req.Expression, "variable", req.Variable)
	resp, _ := s.solve(c.UserContext(), req)
	return c.JSON(resp)
}

// solve answers from the cache when possible. Concurrent misses on the same
// key share one computation.
func (s *Server) solve(ctx context.Context, req api.SolveRequest) (*api.SolveResponse, bool) {
	start := time.Now()
	key := cachestor.Key(req)

	resp, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache lookup failed", "key", key, "err", err)
	}
	cached := err == nil && hit
	if !cached {
		v, _, _ := s.group.Do(key, func() (any, error) {
			r := s.compute(req)
			if r.Success {
				if err := s.cache.Set(ctx, key, r); err != nil {
					slog.Warn("cache store failed", "key", key, "err", err)
				}
			}
			return r, nil
		})
		resp = v.(*api.SolveResponse)
	}

	s.solves.Add(1)
	if !resp.Success {
		s.failures.Add(1)
	}
	s.bus.Publish(api.SolveEvent{
		ID:         uuid.New().String(),
		Request:    req,
		Response:   resp,
		Cached:     cached,
		DurationMS: time.Since(start).Milliseconds(),
		At:         start,
	})
	return resp, cached
}

// compute is detached from the request context: its result is shared with
// every caller waiting on the same key.
func (s *Server) compute(req api.SolveRequest) *api.SolveResponse {
	ctx := context.Background()
	if t := s.cfg.Solver.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	resp := Compute(ctx, s.solver, req)
	if !resp.Success {
		slog.Error("Error solving integral", "expression", req.Expression, "err", resp.Error)
	}
	return resp
}

// Compute runs one integration and shapes the outcome as a solve response.
func Compute(ctx context.Context, sv *solver.Solver, req api.SolveRequest) *api.SolveResponse {
	sol, err := sv.IntegrateContext(ctx, req.Expression, req.Variable)
	if err != nil {
		return api.Failure("Error: " + err.Error())
	}
	return &api.SolveResponse{
		Success:     true,
		Input:       sol.Input,
		Result:      sol.Result,
		Method:      sol.Method,
		Steps:       sol.Steps,
		InputLaTeX:  sol.InputLaTeX,
		ResultLaTeX: sol.ResultLaTeX,
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.cache.Ping(c.UserContext()); err != nil {
		slog.Warn("cache unhealthy", "backend", s.cache.Backend(), "err", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(api.HealthResponse{Status: "degraded", Cache: s.cache.Backend()})
	}
	return c.JSON(api.HealthResponse{Status: "healthy", Cache: s.cache.Backend()})
}

func (s *Server) handleExamples(c *fiber.Ctx) error {
	groups := make([]api.ExampleGroup, len(solver.Examples))
	for i, g := range solver.Examples {
		groups[i] = api.ExampleGroup{Category: g.Category, Expressions: g.Expressions}
	}
	return c.JSON(api.ExamplesResponse{Groups: groups, Note: solver.ExamplesNote})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	cs := s.cache.Stats()
	return c.JSON(api.StatsResponse{
		Solves:      s.solves.Load(),
		Failures:    s.failures.Load(),
		CacheHits:   int64(cs.Hits),
		CacheMisses: int64(cs.Misses),
		HitRate:     cs.HitRate,
		Subscribers: s.feeds.Subscribers(),
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history is disabled"})
	}
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > historystor.MaxLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid limit"})
	}
	entries, err := s.history.Recent(limit)
	if err != nil {
		slog.Error("Failed to read history", "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read history"})
	}
	out := make([]api.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = e.API()
	}
	return c.JSON(out)
}

func (s *Server) handleHistoryEntry(c *fiber.Ctx) error {
	if s.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history is disabled"})
	}
	e, err := s.history.FindByID(c.Params("id"))
	if errors.Is(err, historystor.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "history entry not found"})
	}
	if err != nil {
		slog.Error("Failed to read history entry", "id", c.Params("id"), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read history"})
	}
	return c.JSON(e.API())
}

func (s *Server) handlePurgeCache(c *fiber.Ctx) error {
	if err := s.cache.Purge(c.UserContext()); err != nil {
		slog.Error("Failed to purge cache", "backend", s.cache.Backend(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to purge cache"})
	}
	slog.Info("Cache purged", "backend", s.cache.Backend())
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleFeedUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		topic := c.Params("topic")
		if !validTopic(topic) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown topic"})
		}
		slog.Info("WebSocket feed request", "topic", topic)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (s *Server) handleFeedConn(conn *websocket.Conn) {
	topic := conn.Params("topic")
	client := s.feeds.Subscribe(topic, conn)
	defer func() {
		client.Close()
		client.Wait()
		s.feeds.CleanupHub(topic)
	}()

	conn.SetReadDeadline(time.Now().Add(config.WSReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(config.WSReadTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("WebSocket feed closed", "topic", topic)
				return
			}
			slog.Debug("WebSocket feed read ended", "topic", topic, "err", err)
			return
		}
	}
}
