package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
)

const (
	appName         = "hh-interviewer"
	shutdownTimeout = 10 * time.Second
)

// VacancySource resolves a vacancy reference into a job description.
type VacancySource interface {
	JobDescription(ctx context.Context, idOrURL string) (string, error)
}

type Options struct {
	Listen       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Vacancies is optional. Without it sessions must carry a job description.
	Vacancies VacancySource
}

// Server exposes the interview service over HTTP.
type Server struct {
	app       *fiber.App
	service   *interview.Service
	vacancies VacancySource
	logger    *zap.Logger
	listen    string
	newID     func() string
}

func New(service *interview.Service, opts Options, log *zap.Logger) *Server {
	log = logger.WithFields(log).Named("http")

	s := &Server{
		service:   service,
		vacancies: opts.Vacancies,
		logger:    log,
		listen:    opts.Listen,
		newID:     uuid.NewString,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          s.errorHandler,
		DisableStartupMessage: true,
	})

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger())

	s.routes()

	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api/v1")

	api.Get("/health", s.handleHealth)
	api.Post("/sessions", s.handleCreateSession)
	api.Post("/sessions/:id/turns", s.handleTurn)
	api.Get("/sessions/:id/summary", s.handleSummary)
	api.Put("/sessions/:id/round", s.handleSetRound)
	api.Delete("/sessions/:id", s.handleEndSession)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("address", s.listen))
		errCh <- s.app.Listen(s.listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}

	return nil
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var (
		fiberErr *fiber.Error
		genErr   *ai.GenerationError
	)
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
	case errors.Is(err, interview.ErrSessionNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, interview.ErrEmptySessionID):
		code = fiber.StatusBadRequest
	case errors.As(err, &genErr):
		code = fiber.StatusBadGateway
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		s.logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)

		return nil
	}
}
