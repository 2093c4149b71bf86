package interview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const answerPreviewLength = 50

// Deps aggregates the collaborators shared by every controller.
type Deps struct {
	Assistant ai.Assistant
	Content   Content
	Logger    *zap.Logger
	// TurnTimeout bounds each call to the assistant. Zero means no bound.
	TurnTimeout time.Duration
}

// Controller runs the turn state machine of a single interview. All methods
// are serialized, so concurrent turns on one session are applied in order.
type Controller struct {
	mu      sync.Mutex
	session Session

	assistant ai.Assistant
	content   Content
	logger    *zap.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewController(jobDescription, resume string, deps Deps) *Controller {
	content := deps.Content
	if content == nil {
		content = NewDefaultContent()
	}

	return &Controller{
		session: Session{
			JobDescription: jobDescription,
			Resume:         resume,
			CurrentRound:   ai.RoundHR,
		},
		assistant: deps.Assistant,
		content:   content,
		logger:    logger.WithFields(deps.Logger),
		timeout:   deps.TurnTimeout,
		now:       time.Now,
	}
}

// ProcessTurn applies one candidate answer and returns the next prompt. A
// generation failure is returned as *ai.GenerationError and leaves the
// session untouched.
func (c *Controller) ProcessTurn(ctx context.Context, answer string) (*TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.CurrentQuestion == "" {
		return c.start(), nil
	}

	if strings.TrimSpace(answer) == "" {
		return c.handleEmpty(ctx)
	}

	return c.evaluateAndProceed(ctx, answer)
}

func (c *Controller) start() *TurnResult {
	c.session.CurrentQuestion = c.content.OpeningQuestion()
	c.session.CurrentRound = ai.RoundHR
	c.session.IsRephrased = false
	c.session.AskedQuestions = append(c.session.AskedQuestions, IntroductionMarker)
	c.session.StartedAt = c.now()

	c.logger.Info("interview started")

	return &TurnResult{
		ScoreOutOf10:     0,
		EvaluationReason: reasonStarted,
		Question:         c.session.CurrentQuestion,
		Action:           ActionStartInterview,
		Round:            c.session.CurrentRound,
	}
}

func (c *Controller) handleEmpty(ctx context.Context) (*TurnResult, error) {
	next, err := c.generateQuestion(ctx)
	if err != nil {
		return nil, err
	}

	c.session.CurrentQuestion = next
	c.session.IsRephrased = false
	c.session.AskedQuestions = append(c.session.AskedQuestions, next)

	c.logger.Info("empty answer, asking a new question",
		zap.String(logger.FieldAction, string(ActionEmptyResponse)),
	)

	return &TurnResult{
		EvaluationReason: reasonEmpty,
		Question:         join(c.content.Encouragement(KindEmpty, 0), next),
		Action:           ActionEmptyResponse,
		Round:            c.session.CurrentRound,
	}, nil
}

func (c *Controller) evaluateAndProceed(ctx context.Context, answer string) (*TurnResult, error) {
	evaluation := c.evaluate(ctx, answer)

	rephrase := !evaluation.Adequate && !c.session.IsRephrased

	c.logger.Debug("answer evaluated",
		zap.String("question_preview", utils.TruncateForLog(c.session.CurrentQuestion, answerPreviewLength)),
		zap.String("answer_preview", utils.TruncateForLog(answer, answerPreviewLength)),
		zap.Bool("adequate", evaluation.Adequate),
		zap.Int("score", evaluation.Score),
		zap.Bool("is_rephrased", c.session.IsRephrased),
		zap.Bool("rephrase", rephrase),
	)

	if rephrase {
		return c.rephrase(ctx, evaluation)
	}
	return c.advance(ctx, evaluation)
}

// evaluate never fails: evaluator errors turn into an adequate zero-score
// result so an unreachable model cannot stall the interview.
func (c *Controller) evaluate(ctx context.Context, answer string) ai.Evaluation {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	evaluation, err := c.assistant.Evaluate(callCtx, c.session.CurrentQuestion, answer, c.session.JobDescription, c.session.Resume)
	if err == nil && evaluation == nil {
		err = errors.New("evaluator returned no result")
	}
	if err != nil {
		c.logger.Warn("evaluation failed, accepting answer with zero score", zap.Error(err))
		return ai.Evaluation{Adequate: true, Score: 0, Reason: fmt.Sprintf("Error: %v", err)}
	}

	return *evaluation
}

func (c *Controller) rephrase(ctx context.Context, evaluation ai.Evaluation) (*TurnResult, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	rephrased, err := c.assistant.Rephrase(callCtx, c.session.CurrentQuestion)
	if err != nil {
		return nil, asGenerationError(ai.OpRephrase, err)
	}
	rephrased = strings.TrimSpace(rephrased)
	if rephrased == "" {
		return nil, &ai.GenerationError{Op: ai.OpRephrase, Err: errors.New("empty rephrased question")}
	}

	c.session.CurrentQuestion = rephrased
	c.session.IsRephrased = true

	c.logger.Info("inadequate answer, rephrasing the question",
		zap.String(logger.FieldAction, string(ActionInadequateFirstTime)),
		zap.Int("score", evaluation.Score),
	)

	return &TurnResult{
		IsInadequate:     true,
		ScoreOutOf10:     evaluation.Score,
		EvaluationReason: evaluation.Reason,
		Question:         join(c.content.Encouragement(KindRephrase, evaluation.Score), rephrased),
		IsRephrased:      true,
		Action:           ActionInadequateFirstTime,
		Round:            c.session.CurrentRound,
	}, nil
}

func (c *Controller) advance(ctx context.Context, evaluation ai.Evaluation) (*TurnResult, error) {
	next, err := c.generateQuestion(ctx)
	if err != nil {
		return nil, err
	}

	c.session.CurrentQuestion = next
	c.session.IsRephrased = false
	c.session.TotalScore += evaluation.Score
	c.session.QuestionCount++
	c.session.AskedQuestions = append(c.session.AskedQuestions, next)

	action := ActionAdequateResponse
	kind := KindAdequate
	if !evaluation.Adequate {
		action = ActionInadequateMoveOn
		kind = KindMoveOn
	}

	c.logger.Info("moving to a new question",
		zap.String(logger.FieldAction, string(action)),
		zap.Int("score", evaluation.Score),
		zap.Int("total_score", c.session.TotalScore),
		zap.Int("question_count", c.session.QuestionCount),
	)

	return &TurnResult{
		IsInadequate:     !evaluation.Adequate,
		ScoreOutOf10:     evaluation.Score,
		EvaluationReason: evaluation.Reason,
		Question:         join(c.content.Encouragement(kind, evaluation.Score), next),
		Action:           action,
		Round:            c.session.CurrentRound,
	}, nil
}

func (c *Controller) generateQuestion(ctx context.Context) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	generated, err := c.assistant.GenerateQuestion(callCtx, ai.QuestionRequest{
		Round:          c.session.CurrentRound,
		JobDescription: c.session.JobDescription,
		Resume:         c.session.Resume,
		AskedQuestions: slices.Clone(c.session.AskedQuestions),
	})
	if err != nil {
		return "", asGenerationError(ai.OpQuestion, err)
	}
	if generated == nil || strings.TrimSpace(generated.Question) == "" {
		return "", &ai.GenerationError{Op: ai.OpQuestion, Err: errors.New("empty question")}
	}

	return strings.TrimSpace(generated.Question), nil
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Summary returns the accumulated score without side effects.
func (c *Controller) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Summary{
		TotalScore:    c.session.TotalScore,
		QuestionCount: c.session.QuestionCount,
		CurrentRound:  c.session.CurrentRound,
	}
}

// SetRound switches the round used for the next generated question.
func (c *Controller) SetRound(round ai.Round) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.CurrentRound == round {
		return
	}

	c.logger.Info("round changed",
		zap.String("from", string(c.session.CurrentRound)),
		zap.String(logger.FieldRound, string(round)),
	)
	c.session.CurrentRound = round
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	s.AskedQuestions = slices.Clone(c.session.AskedQuestions)
	return s
}

func asGenerationError(op string, err error) error {
	var genErr *ai.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &ai.GenerationError{Op: op, Err: err}
}

func join(preamble, question string) string {
	preamble = strings.TrimSpace(preamble)
	if preamble == "" {
		return question
	}
	return preamble + " " + question
}
