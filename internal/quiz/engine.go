// Package quiz runs the financial literacy quiz that lifts a UPI block.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketguard/backend/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	DefaultCount = 5
	MaxCount     = 20
)

var (
	ErrNoQuestions  = fmt.Errorf("%w quiz questions for this difficulty", models.ErrResourceNotFound)
	ErrNoActiveQuiz = fmt.Errorf("%w quiz in progress, start a quiz first", models.ErrResourceNotFound)
	ErrInvalidCount = fmt.Errorf("the number of questions must be between 1 and %d", MaxCount)
)

// Question is a quiz question as shown while the quiz is in progress.
type Question struct {
	ID         uuid.UUID         `json:"id" example:"b5b0e0a4-6ba4-4b4a-8b6e-8d5b4f3f4b0e"`
	Question   string            `json:"question" example:"Why is having an emergency fund important?"`
	Options    []string          `json:"options"`
	Difficulty models.Difficulty `json:"difficulty" example:"medium"`
}

func newQuestion(q models.QuizQuestion) Question {
	return Question{
		ID:         q.ID,
		Question:   q.Question,
		Options:    q.Options,
		Difficulty: q.Difficulty,
	}
}

// Attempt is a quiz in progress.
type Attempt struct {
	ID             uuid.UUID  `json:"id"`
	Questions      []Question `json:"questions"`
	TotalQuestions int        `json:"totalQuestions" example:"5"`
	StartedAt      time.Time  `json:"startedAt"`
}

func newAttempt(attempt models.QuizAttempt, questions []models.QuizQuestion) Attempt {
	a := Attempt{
		ID:             attempt.ID,
		Questions:      make([]Question, 0, len(questions)),
		TotalQuestions: attempt.TotalQuestions,
		StartedAt:      attempt.CreatedAt,
	}

	for _, q := range questions {
		a.Questions = append(a.Questions, newQuestion(q))
	}

	return a
}

// Result is the grading of one question.
type Result struct {
	QuestionID    uuid.UUID `json:"questionId"`
	Question      string    `json:"question"`
	Answer        *int      `json:"answer"` // nil when the question was not answered
	CorrectAnswer int       `json:"correctAnswer" example:"1"`
	Correct       bool      `json:"correct"`
	Explanation   string    `json:"explanation"`
}

// Outcome is the result of a completed quiz.
type Outcome struct {
	CorrectAnswers int      `json:"correctAnswers" example:"4"`
	TotalQuestions int      `json:"totalQuestions" example:"5"`
	Passed         bool     `json:"passed" example:"true"`
	Score          int      `json:"score" example:"80"` // Percentage of correct answers, rounded
	UPIUnblocked   bool     `json:"upiUnblocked" example:"true"`
	Results        []Result `json:"results"`
}

// Engine draws and grades quizzes.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine drawing questions with rng. A nil rng
// uses a randomly seeded source.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Engine{rng: rng}
}

// Start draws a new quiz for the user and replaces any previous attempt.
//
// An empty difficulty draws from all questions. A count of 0 uses DefaultCount.
func (e *Engine) Start(db *gorm.DB, userID uuid.UUID, difficulty models.Difficulty, count int) (Attempt, error) {
	if difficulty != "" && !difficulty.Valid() {
		return Attempt{}, models.ErrInvalidDifficulty
	}

	if count == 0 {
		count = DefaultCount
	}

	if count < 0 || count > MaxCount {
		return Attempt{}, ErrInvalidCount
	}

	questions, err := models.QuizQuestions(db, difficulty)
	if err != nil {
		return Attempt{}, err
	}

	if len(questions) == 0 {
		return Attempt{}, ErrNoQuestions
	}

	e.shuffle(questions)
	questions = questions[:min(count, len(questions))]

	attempt := models.QuizAttempt{
		UserID:         userID,
		QuestionIDs:    make([]uuid.UUID, 0, len(questions)),
		TotalQuestions: len(questions),
	}
	for _, q := range questions {
		attempt.QuestionIDs = append(attempt.QuestionIDs, q.ID)
	}

	if err := models.ReplaceQuizAttempt(db, &attempt); err != nil {
		return Attempt{}, err
	}

	startedTotal.Inc()
	return newAttempt(attempt, questions), nil
}

// Current returns the quiz the user has in progress.
func (e *Engine) Current(db *gorm.DB, userID uuid.UUID) (Attempt, error) {
	attempt, err := models.ActiveQuizAttempt(db, userID)
	if errors.Is(err, models.ErrResourceNotFound) {
		return Attempt{}, ErrNoActiveQuiz
	} else if err != nil {
		return Attempt{}, err
	}

	questions, err := models.QuestionsByID(db, attempt.QuestionIDs)
	if err != nil {
		return Attempt{}, err
	}

	return newAttempt(attempt, questions), nil
}

// Complete grades the answers against the quiz in progress.
//
// answers[i] is the option chosen for the i-th question. Missing answers are
// wrong and extra answers are ignored. Passing the quiz lifts the UPI block.
func (e *Engine) Complete(db *gorm.DB, userID uuid.UUID, answers []int) (Outcome, error) {
	var outcome Outcome

	err := db.Transaction(func(tx *gorm.DB) error {
		attempt, err := models.ActiveQuizAttempt(tx, userID)
		if errors.Is(err, models.ErrResourceNotFound) {
			return ErrNoActiveQuiz
		} else if err != nil {
			return err
		}

		questions, err := models.QuestionsByID(tx, attempt.QuestionIDs)
		if err != nil {
			return err
		}

		outcome = grade(attempt.TotalQuestions, questions, answers)

		attempt.CorrectAnswers = outcome.CorrectAnswers
		attempt.Completed = true
		if err := tx.Select("CorrectAnswers", "Completed").Updates(&attempt).Error; err != nil {
			return err
		}

		if outcome.Passed {
			if _, err := models.SetUPIBlocked(tx, userID, false); err != nil {
				return err
			}
			outcome.UPIUnblocked = true
		}

		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	if outcome.Passed {
		completedTotal.WithLabelValues("passed").Inc()
	} else {
		completedTotal.WithLabelValues("failed").Inc()
	}

	log.Info().Str("user", userID.String()).Int("score", outcome.Score).Bool("passed", outcome.Passed).Msg("quiz completed")
	return outcome, nil
}

// shuffle permutes the questions in place (Fisher–Yates).
func (e *Engine) shuffle(questions []models.QuizQuestion) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := len(questions) - 1; i > 0; i-- {
		j := e.rng.IntN(i + 1)
		questions[i], questions[j] = questions[j], questions[i]
	}
}

// grade scores answers against questions. total is the number of questions
// that were asked and may exceed len(questions) if a question has been removed since.
func grade(total int, questions []models.QuizQuestion, answers []int) Outcome {
	outcome := Outcome{
		TotalQuestions: total,
		Results:        make([]Result, 0, len(questions)),
	}

	for i, q := range questions {
		r := Result{
			QuestionID:    q.ID,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}

		if i < len(answers) {
			answer := answers[i]
			r.Answer = &answer
			r.Correct = answer == q.CorrectAnswer
		}

		if r.Correct {
			outcome.CorrectAnswers++
		}
		outcome.Results = append(outcome.Results, r)
	}

	// 60% or more is a pass
	outcome.Passed = total > 0 && 10*outcome.CorrectAnswers >= 6*total

	if total > 0 {
		outcome.Score = (200*outcome.CorrectAnswers + total) / (2 * total)
	}

	return outcome
}
