package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/julienduc-econ/finquiz/internal/attempt"
	"github.com/julienduc-econ/finquiz/internal/identity"
	"github.com/julienduc-econ/finquiz/internal/question"
	"github.com/julienduc-econ/finquiz/internal/quiz"
)

// ResolveFunc authenticates a pseudo and PIN pair and returns the identity
// to record attempts under.
type ResolveFunc func(ctx context.Context, pseudo, pin string) (string, error)

// QuizSessionCLI drives one interactive quiz run, question by question.
// In challenge mode the learner logs in first and the final score is
// persisted; in practice mode answers are corrected on the spot and nothing
// is stored.
type QuizSessionCLI struct {
	*InteractiveQuizCLI
	session       *quiz.Session
	generator     quiz.Generator
	store         attempt.Store
	resolve       ResolveFunc
	identity      string
	category      question.Category
	challenge     bool
	questionCount int
}

// NewQuizSessionCLI creates a new quiz interactive CLI.
func NewQuizSessionCLI(
	generator quiz.Generator,
	store attempt.Store,
	resolve ResolveFunc,
	tolerance quiz.TolerancePolicy,
	category question.Category,
	challenge bool,
	questionCount int,
) *QuizSessionCLI {
	return &QuizSessionCLI{
		InteractiveQuizCLI: newInteractiveQuizCLI(),
		session:            quiz.NewSession(tolerance),
		generator:          generator,
		store:              store,
		resolve:            resolve,
		category:           category,
		challenge:          challenge,
		questionCount:      questionCount,
	}
}

func (r *QuizSessionCLI) Session(ctx context.Context) error {
	if r.session.Phase() == quiz.PhaseNotStarted {
		if r.challenge && r.identity == "" {
			done, err := r.login(ctx)
			if err != nil {
				return err
			}
			if !done {
				// Wrong PIN or invalid input, prompt again.
				return nil
			}
		}

		if err := r.session.Start(r.generator, r.category, r.challenge, r.questionCount); err != nil {
			return fmt.Errorf("session.Start() > %w", err)
		}
		if _, err := r.bold.Fprintf(r.stdoutWriter, "Quiz : %s (%d questions)\n", r.category, r.questionCount); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		if r.challenge {
			if _, err := fmt.Fprintln(r.stdoutWriter, "Mode défi : les corrections sont masquées, le score sera enregistré."); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
		}
	}

	q, err := r.session.Current()
	if err != nil {
		return fmt.Errorf("session.Current() > %w", err)
	}

	if _, err := fmt.Fprintln(r.stdoutWriter); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := r.bold.Fprintf(r.stdoutWriter, "Question %d/%d [%s]\n", r.session.Index()+1, r.session.Count(), q.Category); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := fmt.Fprintln(r.stdoutWriter, q.Statement); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := fmt.Fprintf(r.stdoutWriter, "Réponse (%s) : ", q.Unit); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	input, err := r.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errEnd
		}
		return fmt.Errorf("error reading answer input: %w", err)
	}
	if input == "quit" || input == "exit" {
		if _, err := fmt.Fprintln(r.stdoutWriter, "Session terminée."); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return errEnd
	}

	value, parseErr := ParseAnswer(input)
	if parseErr != nil {
		if _, err := fmt.Fprintf(r.stdoutWriter, "Réponse invalide : %v\n", parseErr); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	correct, err := r.session.Submit(value)
	if err != nil {
		return fmt.Errorf("session.Submit() > %w", err)
	}
	if err := r.displayCorrection(q, correct); err != nil {
		return err
	}
	if err := r.session.Advance(); err != nil {
		return fmt.Errorf("session.Advance() > %w", err)
	}

	if r.session.Phase() == quiz.PhaseCompleted {
		return r.finish(ctx)
	}
	return nil
}

func (r *QuizSessionCLI) displayCorrection(q question.Question, correct bool) error {
	if r.challenge {
		// Corrections stay hidden until the whole run is over.
		if _, err := fmt.Fprintln(r.stdoutWriter, "🔒 Réponse enregistrée."); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	solution := r.italic.Sprintf("%s", question.FormatAmount(q.Solution, q.Unit))
	if correct {
		green := color.New(color.FgGreen)
		if _, err := fmt.Fprint(r.stdoutWriter, "✅ "); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		if _, err := green.Fprintf(r.stdoutWriter, "Correct ! La réponse est %s\n", solution); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	red := color.New(color.FgRed)
	if _, err := fmt.Fprint(r.stdoutWriter, "❌ "); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := red.Fprintf(r.stdoutWriter, "Incorrect. La réponse attendue était %s\n", solution); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (r *QuizSessionCLI) finish(ctx context.Context) error {
	if _, err := fmt.Fprintln(r.stdoutWriter); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if _, err := r.bold.Fprintf(r.stdoutWriter, "Score final : %d/%d en %.1f min\n",
		r.session.Score(), r.session.Count(), r.session.ElapsedMinutes()); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	if r.challenge {
		saved, err := r.session.Finalize(ctx, r.store, r.identity)
		if err != nil {
			yellow := color.New(color.FgYellow)
			if _, werr := yellow.Fprintf(r.stdoutWriter, "⚠️ Impossible d'enregistrer le score : %v\n", err); werr != nil {
				return fmt.Errorf("failed to write to stdout: %w", werr)
			}
			return errEnd
		}
		if saved {
			if _, err := fmt.Fprintf(r.stdoutWriter, "💾 Score enregistré pour %s.\n", r.identity); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
		}
	}
	return errEnd
}

// login prompts for a pseudo and PIN and resolves them to an identity.
// Returns false without an error when the learner should be prompted again.
func (r *QuizSessionCLI) login(ctx context.Context) (bool, error) {
	if _, err := fmt.Fprint(r.stdoutWriter, "Pseudo : "); err != nil {
		return false, fmt.Errorf("failed to write to stdout: %w", err)
	}
	pseudo, err := r.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, errEnd
		}
		return false, fmt.Errorf("error reading pseudo input: %w", err)
	}
	if pseudo == "quit" || pseudo == "exit" {
		return false, errEnd
	}
	if pseudo == "" {
		if _, err := fmt.Fprintln(r.stdoutWriter, "Le pseudo ne peut pas être vide."); err != nil {
			return false, fmt.Errorf("failed to write to stdout: %w", err)
		}
		return false, nil
	}

	if _, err := fmt.Fprint(r.stdoutWriter, "Code PIN (4 chiffres) : "); err != nil {
		return false, fmt.Errorf("failed to write to stdout: %w", err)
	}
	pin, err := r.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, errEnd
		}
		return false, fmt.Errorf("error reading PIN input: %w", err)
	}
	if !isValidPIN(pin) {
		if _, err := fmt.Fprintln(r.stdoutWriter, "Le code PIN doit comporter 4 chiffres."); err != nil {
			return false, fmt.Errorf("failed to write to stdout: %w", err)
		}
		return false, nil
	}

	resolved, err := r.resolve(ctx, pseudo, pin)
	if err != nil {
		if errors.Is(err, identity.ErrPINMismatch) {
			red := color.New(color.FgRed)
			if _, werr := red.Fprintln(r.stdoutWriter, "Code PIN incorrect pour ce pseudo."); werr != nil {
				return false, fmt.Errorf("failed to write to stdout: %w", werr)
			}
			return false, nil
		}
		return false, fmt.Errorf("resolve identity > %w", err)
	}

	r.identity = resolved
	return true, nil
}

func isValidPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
