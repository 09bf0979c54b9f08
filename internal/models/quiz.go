package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty. The empty difficulty is not valid.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// QuizQuestion is a multiple choice question of the financial literacy quiz.
type QuizQuestion struct {
	DefaultModel
	Question      string     `json:"question" gorm:"uniqueIndex"`
	Options       []string   `json:"options" gorm:"serializer:json;type:text"`
	CorrectAnswer int        `json:"correctAnswer"` // Index into Options
	Explanation   string     `json:"explanation"`
	Difficulty    Difficulty `json:"difficulty" gorm:"index"`
}

// QuizAttempt is the quiz session of a user. Each user has at most one.
type QuizAttempt struct {
	DefaultModel
	User           User        `json:"-"`
	UserID         uuid.UUID   `json:"userId" gorm:"uniqueIndex"`
	QuestionIDs    []uuid.UUID `json:"questionIds" gorm:"serializer:json;type:text"` // Questions in the order they were asked
	CorrectAnswers int         `json:"correctAnswers"`
	TotalQuestions int         `json:"totalQuestions"`
	Completed      bool        `json:"completed"`
}

// QuizQuestions returns all questions, optionally of one difficulty.
func QuizQuestions(db *gorm.DB, difficulty Difficulty) ([]QuizQuestion, error) {
	q := db.Order("created_at ASC").Order("question ASC")
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}

	var questions []QuizQuestion
	err := q.Find(&questions).Error
	return questions, err
}

// QuestionsByID returns the questions in the order of ids. Questions that
// no longer exist are skipped.
func QuestionsByID(db *gorm.DB, ids []uuid.UUID) ([]QuizQuestion, error) {
	if len(ids) == 0 {
		return []QuizQuestion{}, nil
	}

	var found []QuizQuestion
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]QuizQuestion, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	questions := make([]QuizQuestion, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}

	return questions, nil
}

// ReplaceQuizAttempt stores attempt as the only attempt of its user.
func ReplaceQuizAttempt(db *gorm.DB, attempt *QuizAttempt) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", attempt.UserID).Delete(&QuizAttempt{}).Error; err != nil {
			return err
		}

		return tx.Create(attempt).Error
	})
}

// ActiveQuizAttempt returns the attempt of the user that has not been completed.
func ActiveQuizAttempt(db *gorm.DB, userID uuid.UUID) (QuizAttempt, error) {
	var attempt QuizAttempt
	err := db.Where("user_id = ? AND completed = ?", userID, false).First(&attempt).Error
	return attempt, err
}

// seedQuizQuestions inserts the question catalog. Existing questions are kept.
func seedQuizQuestions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&QuizQuestion{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	questions := defaultQuizQuestions()
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&questions).Error
}

func defaultQuizQuestions() []QuizQuestion {
	return []QuizQuestion{
		{
			Question: "What happens when you consistently spend more than you earn?",
			Options: []string{
				"You build wealth faster",
				"Your debt increases over time",
				"Your credit score improves",
				"Banks offer you better interest rates",
			},
			CorrectAnswer: 1,
			Explanation:   "Consistently spending more than you earn leads to increasing debt, which can become difficult to pay off due to compounding interest.",
			Difficulty:    DifficultyEasy,
		},
		{
			Question: "Which of these is a good budgeting habit?",
			Options: []string{
				"Spending your entire paycheck immediately",
				"Only checking your account balance once a month",
				"Tracking your expenses and categorizing them",
				"Taking on debt for non-essential purchases",
			},
			CorrectAnswer: 2,
			Explanation:   "Tracking and categorizing expenses helps you understand your spending patterns and identify areas where you can save.",
			Difficulty:    DifficultyEasy,
		},
		{
			Question: "Why is having an emergency fund important?",
			Options: []string{
				"It's not important if you have good income",
				"It allows you to handle unexpected expenses without going into debt",
				"It helps you pay for luxury items",
				"Banks require it for account maintenance",
			},
			CorrectAnswer: 1,
			Explanation:   "An emergency fund provides financial security by covering unexpected expenses like medical emergencies or car repairs without relying on credit cards or loans.",
			Difficulty:    DifficultyMedium,
		},
		{
			Question: "What's the difference between needs and wants in budgeting?",
			Options: []string{
				"There is no difference, they're the same thing",
				"Needs are things you can't live without, wants are things you desire but can live without",
				"Needs are expensive, wants are cheap",
				"Needs are monthly expenses, wants are one-time purchases",
			},
			CorrectAnswer: 1,
			Explanation:   "Needs are essential for survival (food, shelter, utilities, basic clothing) while wants are non-essential items that improve quality of life but aren't necessary for survival.",
			Difficulty:    DifficultyMedium,
		},
		{
			Question: "What is the 50/30/20 budgeting rule?",
			Options: []string{
				"Spend 50% on entertainment, 30% on food, 20% on savings",
				"Spend 50% on needs, 30% on wants, and 20% on savings/debt repayment",
				"Spend 50% on housing, 30% on transportation, 20% on everything else",
				"Spend 50% of your time working, 30% having fun, 20% planning finances",
			},
			CorrectAnswer: 1,
			Explanation:   "The 50/30/20 rule suggests allocating 50% of your income to needs, 30% to wants, and 20% to savings and debt repayment as a simple framework for budgeting.",
			Difficulty:    DifficultyHard,
		},
	}
}
