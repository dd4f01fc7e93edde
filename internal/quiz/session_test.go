package quiz

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	mock_attempt "github.com/julienduc-econ/finquiz/internal/mocks/attempt"
	"github.com/julienduc-econ/finquiz/internal/question"
)

// stubGenerator replays a fixed list of questions.
type stubGenerator struct {
	questions []question.Question
	next      int
}

func (g *stubGenerator) Generate(filter question.Category) (question.Question, error) {
	if g.next >= len(g.questions) {
		return question.Question{}, fmt.Errorf("stub exhausted after %d questions", g.next)
	}
	q := g.questions[g.next]
	g.next++
	return q, nil
}

func currencyQuestion(solution float64) question.Question {
	return question.Question{
		Category:  question.CategoryCapitalisation,
		Statement: "Valeur acquise ?",
		Solution:  solution,
		Unit:      question.UnitCurrency,
	}
}

func percentageQuestion(solution float64) question.Question {
	return question.Question{
		Category:  question.CategoryRates,
		Statement: "Quel taux ?",
		Solution:  solution,
		Unit:      question.UnitPercentage,
	}
}

func startedSession(t *testing.T, questions []question.Question, challenge bool) *Session {
	t.Helper()
	session := NewSession(DefaultTolerancePolicy())
	generator := &stubGenerator{questions: questions}
	require.NoError(t, session.Start(generator, question.CategoryAll, challenge, len(questions)))
	return session
}

func TestSession_Start(t *testing.T) {
	t.Run("pre-generates all questions and resets state", func(t *testing.T) {
		session := startedSession(t, []question.Question{
			currencyQuestion(100), currencyQuestion(200),
		}, false)

		assert.Equal(t, PhaseAwaitingAnswer, session.Phase())
		assert.Equal(t, 0, session.Index())
		assert.Equal(t, 2, session.Count())
		assert.Equal(t, 0, session.Score())
	})

	t.Run("generator error aborts the start", func(t *testing.T) {
		session := NewSession(DefaultTolerancePolicy())
		err := session.Start(&stubGenerator{}, question.CategoryAll, false, 2)
		assert.Error(t, err)
		assert.Equal(t, PhaseNotStarted, session.Phase())
	})

	t.Run("non-positive count is rejected", func(t *testing.T) {
		session := NewSession(DefaultTolerancePolicy())
		assert.Error(t, session.Start(&stubGenerator{}, question.CategoryAll, false, 0))
	})
}

func TestSession_Submit_Tolerance(t *testing.T) {
	const epsilon = 1e-9

	tests := []struct {
		name        string
		q           question.Question
		answer      float64
		wantCorrect bool
	}{
		{name: "exact currency answer", q: currencyQuestion(1254.40), answer: 1254.40, wantCorrect: true},
		{name: "currency within tolerance", q: currencyQuestion(1254.40), answer: 1255.40 - epsilon, wantCorrect: true},
		{name: "currency outside tolerance", q: currencyQuestion(1254.40), answer: 1255.40 + epsilon, wantCorrect: false},
		{name: "currency exactly at tolerance is wrong", q: currencyQuestion(1254.40), answer: 1255.40, wantCorrect: false},
		{name: "exact percentage answer", q: percentageQuestion(2.63), answer: 2.63, wantCorrect: true},
		{name: "percentage within tolerance", q: percentageQuestion(2.63), answer: 2.63 + 0.015 - epsilon, wantCorrect: true},
		{name: "percentage outside tolerance", q: percentageQuestion(2.63), answer: 2.63 + 0.015 + epsilon, wantCorrect: false},
		{name: "percentage not held to currency tolerance", q: percentageQuestion(2.63), answer: 3.5, wantCorrect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := startedSession(t, []question.Question{tt.q}, false)

			correct, err := session.Submit(tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, correct)

			answer, wasCorrect := session.LastAnswer()
			assert.Equal(t, tt.answer, answer)
			assert.Equal(t, tt.wantCorrect, wasCorrect)

			wantScore := 0
			if tt.wantCorrect {
				wantScore = 1
			}
			assert.Equal(t, wantScore, session.Score())
			assert.Equal(t, PhaseAnswerShown, session.Phase())
		})
	}
}

func TestSession_ScoreBounds(t *testing.T) {
	questions := []question.Question{
		currencyQuestion(100), currencyQuestion(200), currencyQuestion(300),
		currencyQuestion(400), currencyQuestion(500),
	}
	session := startedSession(t, questions, false)

	answers := []float64{100, -1, 300, -1, 500} // 3 correct
	previousScore := 0
	for i, answer := range answers {
		_, err := session.Submit(answer)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, session.Score(), previousScore, "score never decrements")
		assert.LessOrEqual(t, session.Score(), session.Count())
		previousScore = session.Score()

		if i < len(answers)-1 {
			require.NoError(t, session.Advance())
		}
	}

	require.NoError(t, session.Advance())
	assert.Equal(t, PhaseCompleted, session.Phase())
	assert.Equal(t, 3, session.Score())
}

func TestSession_InvalidTransitions(t *testing.T) {
	t.Run("submit before start", func(t *testing.T) {
		session := NewSession(DefaultTolerancePolicy())
		_, err := session.Submit(1)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("advance while awaiting answer", func(t *testing.T) {
		session := startedSession(t, []question.Question{currencyQuestion(100)}, false)
		assert.ErrorIs(t, session.Advance(), ErrInvalidTransition)
	})

	t.Run("double submit", func(t *testing.T) {
		session := startedSession(t, []question.Question{currencyQuestion(100)}, false)
		_, err := session.Submit(100)
		require.NoError(t, err)
		_, err = session.Submit(100)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("submit after completion", func(t *testing.T) {
		session := startedSession(t, []question.Question{currencyQuestion(100)}, false)
		_, err := session.Submit(100)
		require.NoError(t, err)
		require.NoError(t, session.Advance())
		_, err = session.Submit(100)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("finalize before completion", func(t *testing.T) {
		session := startedSession(t, []question.Question{currencyQuestion(100)}, true)
		_, err := session.Finalize(context.Background(), nil, "zoe")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func completeSession(t *testing.T, session *Session) {
	t.Helper()
	for session.Phase() != PhaseCompleted {
		_, err := session.Submit(0)
		require.NoError(t, err)
		require.NoError(t, session.Advance())
	}
}

func TestSession_Finalize(t *testing.T) {
	t.Run("writes exactly one record however many times it is called", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock_attempt.NewMockStore(ctrl)

		session := startedSession(t, []question.Question{currencyQuestion(100)}, true)
		_, err := session.Submit(100)
		require.NoError(t, err)
		require.NoError(t, session.Advance())

		store.EXPECT().
			Append(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, record attempt.Record) error {
				assert.Equal(t, "zoe", record.Identity)
				assert.Equal(t, 1, record.Score)
				assert.Equal(t, question.CategoryAll, record.Category)
				assert.GreaterOrEqual(t, record.ElapsedMinutes, 0.0)
				assert.False(t, record.CreatedAt.IsZero())
				return nil
			}).
			Times(1)

		for i := 0; i < 5; i++ {
			saved, err := session.Finalize(context.Background(), store, "zoe")
			require.NoError(t, err)
			assert.Equal(t, i == 0, saved)
		}
		assert.True(t, session.Saved())
	})

	t.Run("non-challenge session never writes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock_attempt.NewMockStore(ctrl)

		session := startedSession(t, []question.Question{currencyQuestion(100)}, false)
		completeSession(t, session)

		saved, err := session.Finalize(context.Background(), store, "zoe")
		require.NoError(t, err)
		assert.False(t, saved)
	})

	t.Run("store failure keeps the guard open for a manual retry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock_attempt.NewMockStore(ctrl)

		session := startedSession(t, []question.Question{currencyQuestion(100)}, true)
		completeSession(t, session)

		gomock.InOrder(
			store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(attempt.ErrStoreUnavailable),
			store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil),
		)

		_, err := session.Finalize(context.Background(), store, "zoe")
		assert.ErrorIs(t, err, attempt.ErrStoreUnavailable)
		assert.False(t, session.Saved())

		saved, err := session.Finalize(context.Background(), store, "zoe")
		require.NoError(t, err)
		assert.True(t, saved)
	})
}

func TestSession_ElapsedMinutes(t *testing.T) {
	session := startedSession(t, []question.Question{currencyQuestion(100)}, true)

	started := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	session.startedAt = started
	session.now = func() time.Time { return started.Add(90 * time.Second) }

	assert.InDelta(t, 1.5, session.ElapsedMinutes(), 1e-9)
}
