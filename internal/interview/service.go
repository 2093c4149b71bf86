package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptySessionID  = errors.New("session id is required")
)

// Service is the entry point used by transports.
type Service struct {
	registry *Registry
}

func NewService(registry *Registry) *Service {
	return &Service{registry: registry}
}

// StartOrContinue submits answer to the session, creating the session on its
// first turn. Session ids are opaque and used verbatim; only blank ids are
// rejected.
func (s *Service) StartOrContinue(ctx context.Context, sessionID, jobDescription, resume, answer string) (*TurnResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrEmptySessionID
	}

	controller := s.registry.GetOrCreate(sessionID, jobDescription, resume)

	result, err := controller.ProcessTurn(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	return result, nil
}

func (s *Service) EndSession(sessionID string) {
	s.registry.Dispose(sessionID)
}

func (s *Service) GetSummary(sessionID string) (Summary, error) {
	controller, ok := s.registry.Get(sessionID)
	if !ok {
		return Summary{}, ErrSessionNotFound
	}

	return controller.Summary(), nil
}

// SetRound changes the round of an existing session.
func (s *Service) SetRound(sessionID string, round ai.Round) (Summary, error) {
	controller, ok := s.registry.Get(sessionID)
	if !ok {
		return Summary{}, ErrSessionNotFound
	}

	controller.SetRound(round)
	return controller.Summary(), nil
}

// ActiveSessions reports how many sessions are registered.
func (s *Service) ActiveSessions() int {
	return s.registry.Len()
}
