package interview

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/logger"
)

// Registry maps session identifiers to their controllers. Sessions live until
// they are disposed.
type Registry struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Controller
}

func NewRegistry(deps Deps) *Registry {
	deps.Logger = logger.WithFields(deps.Logger)

	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Controller),
	}
}

// GetOrCreate returns the controller registered for sessionID, creating it with
// the given context on first use. Context passed for an existing session is
// ignored.
func (r *Registry) GetOrCreate(sessionID, jobDescription, resume string) *Controller {
	r.mu.RLock()
	if existing, ok := r.sessions[sessionID]; ok {
		r.mu.RUnlock()
		return existing
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[sessionID]; ok {
		return existing
	}

	deps := r.deps
	deps.Logger = logger.WithSession(r.deps.Logger, sessionID)

	controller := NewController(jobDescription, resume, deps)
	r.sessions[sessionID] = controller

	r.deps.Logger.Debug("session created", zap.String(logger.FieldSessionID, sessionID))

	return controller
}

func (r *Registry) Get(sessionID string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	controller, ok := r.sessions[sessionID]
	return controller, ok
}

// Dispose removes the session. Missing sessions are ignored.
func (r *Registry) Dispose(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return
	}

	delete(r.sessions, sessionID)
	r.deps.Logger.Debug("session disposed", zap.String(logger.FieldSessionID, sessionID))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
