// Package quiz implements the quiz session state machine: a fixed-length
// sequence of generated questions, tolerance-based scoring and a
// save-once completion guard for challenge sessions.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	"github.com/julienduc-econ/finquiz/internal/question"
)

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseNotStarted     Phase = "not_started"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseAnswerShown    Phase = "answer_shown"
	PhaseCompleted      Phase = "completed"
)

// ErrInvalidTransition indicates a session method was called outside the
// phase that allows it. This is a bug in the caller, never user input.
var ErrInvalidTransition = errors.New("invalid session transition")

// Generator produces the session's questions.
type Generator interface {
	Generate(filter question.Category) (question.Question, error)
}

// TolerancePolicy is the maximum absolute deviation still counted as
// correct, per answer unit. Percentage answers are compared much tighter
// than currency ones: typical correct rates are single-digit percentages.
type TolerancePolicy struct {
	Currency   float64
	Percentage float64
}

// DefaultTolerancePolicy returns the course tolerances.
func DefaultTolerancePolicy() TolerancePolicy {
	return TolerancePolicy{Currency: 1.0, Percentage: 0.015}
}

// For returns the tolerance for an answer unit.
func (p TolerancePolicy) For(unit question.AnswerUnit) float64 {
	if unit == question.UnitPercentage {
		return p.Percentage
	}
	return p.Currency
}

// Session is one learner's run. It is exclusively owned by that learner;
// all state transitions happen through Start, Submit, Advance and
// Finalize.
type Session struct {
	category  question.Category
	questions []question.Question
	index     int
	score     int
	phase     Phase
	challenge bool
	startedAt time.Time
	saved     bool

	lastAnswer  float64
	lastCorrect bool

	tolerance TolerancePolicy
	now       func() time.Time
}

// NewSession creates a session in the NotStarted phase.
func NewSession(tolerance TolerancePolicy) *Session {
	return &Session{
		phase:     PhaseNotStarted,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// Start generates count questions eagerly and moves to AwaitingAnswer.
// Starting over an existing run discards it, without side effects.
func (s *Session) Start(generator Generator, filter question.Category, challenge bool, count int) error {
	if count <= 0 {
		return fmt.Errorf("question count must be positive, got %d", count)
	}
	questions := make([]question.Question, 0, count)
	for i := 0; i < count; i++ {
		q, err := generator.Generate(filter)
		if err != nil {
			return fmt.Errorf("generator.Generate() > %w", err)
		}
		questions = append(questions, q)
	}

	s.category = filter
	s.questions = questions
	s.index = 0
	s.score = 0
	s.phase = PhaseAwaitingAnswer
	s.challenge = challenge
	s.startedAt = s.now()
	s.saved = false
	return nil
}

// Current returns the question at the current index.
func (s *Session) Current() (question.Question, error) {
	if s.phase != PhaseAwaitingAnswer && s.phase != PhaseAnswerShown {
		return question.Question{}, fmt.Errorf("%w: no current question in phase %s", ErrInvalidTransition, s.phase)
	}
	return s.questions[s.index], nil
}

// Submit scores raw against the current question's solution and moves to
// AnswerShown. Returns whether the answer was within tolerance.
func (s *Session) Submit(raw float64) (bool, error) {
	if s.phase != PhaseAwaitingAnswer {
		return false, fmt.Errorf("%w: submit in phase %s", ErrInvalidTransition, s.phase)
	}
	q := s.questions[s.index]
	correct := math.Abs(raw-q.Solution) < s.tolerance.For(q.Unit)
	if correct {
		s.score++
	}
	s.lastAnswer = raw
	s.lastCorrect = correct
	s.phase = PhaseAnswerShown
	return correct, nil
}

// Advance moves to the next question, or to Completed after the last one.
func (s *Session) Advance() error {
	if s.phase != PhaseAnswerShown {
		return fmt.Errorf("%w: advance in phase %s", ErrInvalidTransition, s.phase)
	}
	if s.index == len(s.questions)-1 {
		s.phase = PhaseCompleted
		return nil
	}
	s.index++
	s.phase = PhaseAwaitingAnswer
	return nil
}

// Finalize appends the attempt record of a completed challenge session,
// exactly once. The saved guard only flips after a successful append, so a
// StoreUnavailable failure can be retried by calling Finalize again.
// Returns whether a record was written by this call.
func (s *Session) Finalize(ctx context.Context, store attempt.Store, identity string) (bool, error) {
	if s.phase != PhaseCompleted {
		return false, fmt.Errorf("%w: finalize in phase %s", ErrInvalidTransition, s.phase)
	}
	if !s.challenge || s.saved {
		return false, nil
	}

	record := attempt.Record{
		Identity:       identity,
		Score:          s.score,
		Category:       s.category,
		ElapsedMinutes: math.Round(s.ElapsedMinutes()*10) / 10,
		CreatedAt:      s.now(),
	}
	if err := store.Append(ctx, record); err != nil {
		return false, fmt.Errorf("store.Append() > %w", err)
	}
	s.saved = true
	return true, nil
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Category returns the theme filter the session was started with.
func (s *Session) Category() question.Category { return s.category }

// Index returns the zero-based position of the current question.
func (s *Session) Index() int { return s.index }

// Count returns the number of questions in the run.
func (s *Session) Count() int { return len(s.questions) }

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Challenge reports whether completion persists an attempt.
func (s *Session) Challenge() bool { return s.challenge }

// Saved reports whether the attempt record has been written.
func (s *Session) Saved() bool { return s.saved }

// LastAnswer returns the most recently submitted answer and whether it was
// correct. Only meaningful in the AnswerShown phase.
func (s *Session) LastAnswer() (float64, bool) { return s.lastAnswer, s.lastCorrect }

// ElapsedMinutes returns the wall-clock minutes since Start.
func (s *Session) ElapsedMinutes() float64 {
	return s.now().Sub(s.startedAt).Minutes()
}
