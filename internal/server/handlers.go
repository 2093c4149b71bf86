package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
)

type createSessionRequest struct {
	JobDescription string `json:"job_description"`
	Resume         string `json:"resume"`
	// Vacancy is an hh.ru vacancy id or URL used when JobDescription is empty.
	Vacancy string `json:"vacancy"`
}

type createSessionResponse struct {
	SessionID string                `json:"session_id"`
	Turn      *interview.TurnResult `json:"turn"`
}

type turnRequest struct {
	JobDescription string `json:"job_description"`
	Resume         string `json:"resume"`
	Answer         string `json:"answer"`
}

type roundRequest struct {
	Round string `json:"round"`
}

type summaryResponse struct {
	interview.Summary
	AverageScore float64 `json:"average_score"`
}

func newSummaryResponse(summary interview.Summary) summaryResponse {
	return summaryResponse{Summary: summary, AverageScore: summary.AverageScore()}
}

// sessionID copies the route id. Params values point into a buffer fiber
// reuses once the handler returns, and the id may outlive the request as a
// registry key.
func sessionID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"active_sessions": s.service.ActiveSessions(),
		"time":            time.Now(),
	})
}

// handleCreateSession handles POST /sessions.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	jobDescription := req.JobDescription
	if strings.TrimSpace(jobDescription) == "" && strings.TrimSpace(req.Vacancy) != "" {
		if s.vacancies == nil {
			return fiber.NewError(fiber.StatusBadRequest, "vacancy lookup is not configured")
		}

		var err error
		jobDescription, err = s.vacancies.JobDescription(c.UserContext(), req.Vacancy)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
	}

	id := s.newID()
	turn, err := s.service.StartOrContinue(c.UserContext(), id, jobDescription, req.Resume, "")
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(createSessionResponse{SessionID: id, Turn: turn})
}

// handleTurn handles POST /sessions/:id/turns.
func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req turnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	turn, err := s.service.StartOrContinue(c.UserContext(), sessionID(c), req.JobDescription, req.Resume, req.Answer)
	if err != nil {
		return err
	}

	return c.JSON(turn)
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	summary, err := s.service.GetSummary(sessionID(c))
	if err != nil {
		return err
	}

	return c.JSON(newSummaryResponse(summary))
}

func (s *Server) handleSetRound(c *fiber.Ctx) error {
	var req roundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	round, err := ai.ParseRound(req.Round)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	summary, err := s.service.SetRound(sessionID(c), round)
	if err != nil {
		return err
	}

	return c.JSON(newSummaryResponse(summary))
}

func (s *Server) handleEndSession(c *fiber.Ctx) error {
	s.service.EndSession(sessionID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
