package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"

	"github.com/wwlorey/chess-ai/turn"
)

type Decider interface {
	Decide(ctx context.Context, req turn.Request) (string, error)
	Render(fen, color string) (string, error)
}

type Config struct {
	Addr string
	// AllowOrigins is passed to the CORS middleware, empty disables it.
	AllowOrigins string
	Logger       zerolog.Logger
}

type TurnRequest struct {
	FEN             string   `json:"fen"`
	History         []string `json:"history"`
	Color           string   `json:"color"`
	TimeRemainingMs int64    `json:"time_remaining_ms"`
}

type TurnResponse struct {
	SAN       string `json:"san"`
	RequestID string `json:"request_id"`
	Fallback  bool   `json:"fallback"`
	Error     string `json:"error,omitempty"`
}

type RenderRequest struct {
	FEN   string `json:"fen"`
	Color string `json:"color"`
}

type Server struct {
	cfg     Config
	app     *fiber.App
	decider Decider
	logger  zerolog.Logger

	// one turn at a time
	mu sync.Mutex
}

func New(cfg *Config, decider Decider) *Server {
	s := &Server{
		cfg:     *cfg,
		decider: decider,
		logger:  cfg.Logger,
		app: fiber.New(fiber.Config{
			AppName:               "chess-ai",
			DisableStartupMessage: true,
		}),
	}

	if cfg.AllowOrigins != "" {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, " + headerRequestID,
			AllowMethods: "GET, POST, OPTIONS",
		}))
	}
	s.app.Use(EnsureRequestID())
	s.app.Use(LogRequests(s.logger))

	s.app.Get("/healthz", s.Health)
	v1 := s.app.Group("/v1")
	v1.Post("/turn", s.Turn)
	v1.Post("/render", s.Render)
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("listening")
	return s.app.Listen(s.cfg.Addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Turn always answers with a move when the body could be read. Engine
// failures are reported next to the fallback move.
func (s *Server) Turn(c *fiber.Ctx) error {
	var req TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "invalid request body",
			"request_id": requestID(c),
		})
	}
	if req.FEN == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "fen is required",
			"request_id": requestID(c),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With().Str("request_id", requestID(c)).Logger()
	san, err := s.decider.Decide(logger.WithContext(c.UserContext()), turn.Request{
		FEN:           req.FEN,
		History:       req.History,
		Color:         req.Color,
		TimeRemaining: time.Duration(req.TimeRemainingMs) * time.Millisecond,
	})

	res := TurnResponse{
		SAN:       san,
		RequestID: requestID(c),
	}
	var failure *turn.EngineFailureError
	if errors.As(err, &failure) {
		res.Fallback = true
	}
	if err != nil {
		res.Error = err.Error()
	}
	return c.JSON(res)
}

func (s *Server) Render(c *fiber.Ctx) error {
	var req RenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	out, err := s.decider.Render(req.FEN, req.Color)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendString(out)
}
