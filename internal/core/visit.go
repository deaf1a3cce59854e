package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"visitprep/pkg"
)

// CompletionRequest is a single-message chat completion call.
type CompletionRequest struct {
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

// Completer is the hosted text-generation service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// VisitSession is the per-session conversation state: the latest generated
// plan and the follow-up history.  The question and answer lists always have
// the same length.
type VisitSession struct {
	ID        uuid.UUID
	PatientID string
	CreatedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
	plan       string
	questions  []string
	responses  []string
	askedAt    []time.Time
}

// NewVisitSession returns an empty session bound to a patient.
func NewVisitSession(id uuid.UUID, patientID string, now time.Time) *VisitSession {
	return &VisitSession{
		ID:         id,
		PatientID:  patientID,
		CreatedAt:  now,
		lastActive: now,
	}
}

// SessionSnapshot is a consistent copy of a session's state.
type SessionSnapshot struct {
	ID        uuid.UUID      `json:"session_id"`
	PatientID string         `json:"patient_id"`
	CreatedAt time.Time      `json:"created_at"`
	Plan      string         `json:"plan"`
	FollowUps []pkg.FollowUp `json:"follow_ups"`
}

// Snapshot copies the session state under the lock.
func (s *VisitSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	fu := make([]pkg.FollowUp, len(s.questions))
	for i := range s.questions {
		fu[i] = pkg.FollowUp{Question: s.questions[i], Answer: s.responses[i], AskedAt: s.askedAt[i]}
	}
	return SessionSnapshot{
		ID:        s.ID,
		PatientID: s.PatientID,
		CreatedAt: s.CreatedAt,
		Plan:      s.plan,
		FollowUps: fu,
	}
}

// Plan returns the most recently generated plan, or "".
func (s *VisitSession) Plan() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// LastActive returns the time of the last successful state change or access.
func (s *VisitSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch marks the session as recently used.
func (s *VisitSession) Touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *VisitSession) setPlan(plan string, now time.Time) {
	s.mu.Lock()
	s.plan = plan
	s.lastActive = now
	s.mu.Unlock()
}

// appendFollowUp records the pair only if the plan is still the one the
// answer was generated from.
func (s *VisitSession) appendFollowUp(plan, q, a string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan != plan {
		return 0, ErrPlanChanged
	}
	s.questions = append(s.questions, q)
	s.responses = append(s.responses, a)
	s.askedAt = append(s.askedAt, now)
	s.lastActive = now
	return len(s.questions) - 1, nil
}

// FollowUpResult is an answered follow-up and its position in the history.
type FollowUpResult struct {
	pkg.FollowUp
	Index int `json:"index"`
}

// Options tunes the completion calls made by VisitService.
type Options struct {
	MaxTokens         int
	Temperature       float32
	CompletionTimeout time.Duration
}

// DefaultOptions mirrors the parameters the dashboard has always used.
func DefaultOptions() Options {
	return Options{
		MaxTokens:         150,
		Temperature:       0.7,
		CompletionTimeout: 30 * time.Second,
	}
}

// VisitService mediates every state transition of a VisitSession.  It holds
// no per-session state itself and is safe for concurrent use.
type VisitService struct {
	completer Completer
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

// NewVisitService constructs a VisitService.  A nil logger is replaced with a
// no-op logger.
func NewVisitService(c Completer, opts Options, log *zap.Logger) *VisitService {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.CompletionTimeout <= 0 {
		opts.CompletionTimeout = def.CompletionTimeout
	}
	return &VisitService{completer: c, opts: opts, log: log, now: time.Now}
}

// GeneratePlan asks the model for a visit plan for rec and stores it in sess,
// replacing any previous plan.  Each call is a new external request.
func (v *VisitService) GeneratePlan(ctx context.Context, sess *VisitSession, rec pkg.PatientRecord) (string, error) {
	log := v.log.With(zap.Stringer("session_id", sess.ID), zap.String("patient_id", rec.ID))
	prompt := BuildPlanPrompt(rec)
	log.Debug("generating plan", zap.String("prompt", prompt))

	plan, err := v.complete(ctx, "generate plan", prompt)
	if err != nil {
		log.Warn("plan generation failed", zap.Error(err))
		return "", err
	}
	sess.setPlan(plan, v.now())
	log.Info("plan generated", zap.Int("plan_chars", len(plan)))
	log.Debug("generated plan", zap.String("plan", plan))
	return plan, nil
}

// AskFollowUp answers a question about the session's current plan and appends
// the pair to the history.  Blank questions and sessions without a plan are
// rejected before any external call.
func (v *VisitService) AskFollowUp(ctx context.Context, sess *VisitSession, question string) (FollowUpResult, error) {
	if strings.TrimSpace(question) == "" {
		return FollowUpResult{}, ErrInvalidInput
	}
	plan := sess.Plan()
	if plan == "" {
		return FollowUpResult{}, ErrNoPlan
	}
	log := v.log.With(zap.Stringer("session_id", sess.ID))
	prompt := BuildFollowUpPrompt(plan, question)
	log.Debug("asking follow-up", zap.String("question", question))

	answer, err := v.complete(ctx, "follow-up", prompt)
	if err != nil {
		log.Warn("follow-up failed", zap.Error(err))
		return FollowUpResult{}, err
	}
	now := v.now()
	idx, err := sess.appendFollowUp(plan, question, answer, now)
	if err != nil {
		log.Warn("follow-up discarded", zap.Error(err))
		return FollowUpResult{}, err
	}
	log.Info("follow-up answered", zap.Int("index", idx))
	return FollowUpResult{
		FollowUp: pkg.FollowUp{Question: question, Answer: answer, AskedAt: now},
		Index:    idx,
	}, nil
}

func (v *VisitService) complete(ctx context.Context, op, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.opts.CompletionTimeout)
	defer cancel()
	out, err := v.completer.Complete(ctx, CompletionRequest{
		SystemPrompt: prompt,
		MaxTokens:    v.opts.MaxTokens,
		Temperature:  v.opts.Temperature,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(context.DeadlineExceeded, err)
		}
		return "", &CompletionError{Op: op, Err: err}
	}
	if strings.TrimSpace(out) == "" {
		return "", &CompletionError{Op: op, Err: ErrEmptyCompletion}
	}
	return out, nil
}
