package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/pocketguard/backend/internal/models"
)

type QuizStart struct {
	Difficulty models.Difficulty `json:"difficulty" enums:"easy,medium,hard" example:"easy"` // Empty for questions of all difficulties
	Count      int               `json:"count" minimum:"0" maximum:"20" example:"5"`          // 0 or omitted for 5 questions
}

type QuizAnswers struct {
	Answers []int `json:"answers"` // Index of the chosen option for each question, in the order the questions were asked
}

// RegisterQuizRoutes registers the routes for the quiz with
// the RouterGroup that is passed.
func (co Controller) RegisterQuizRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/start", co.OptionsPost)
	r.POST("/start", co.StartQuiz)
	r.OPTIONS("/current", co.OptionsGet)
	r.GET("/current", co.GetQuiz)
	r.OPTIONS("/complete", co.OptionsPost)
	r.POST("/complete", co.CompleteQuiz)
}

// @Summary		Start quiz
// @Description	Draws random questions for a new quiz. A quiz in progress is discarded.
// @Tags			Quiz
// @Accept			json
// @Produce		json
// @Success		201		{object}	quiz.Attempt
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			quiz	body		QuizStart	true	"Quiz"
// @Router			/api/quiz/start [post]
func (co Controller) StartQuiz(c *gin.Context) {
	var data QuizStart
	if err := bind(c, schemas.QuizStart, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	attempt, err := co.Quiz.Start(models.DB, auth.User(c).ID, data.Difficulty, data.Count)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// @Summary		Get quiz
// @Description	Returns the quiz in progress
// @Tags			Quiz
// @Produce		json
// @Success		200	{object}	quiz.Attempt
// @Failure		404	{object}	httperror.Error
// @Failure		500	{object}	httperror.Error
// @Router			/api/quiz/current [get]
func (co Controller) GetQuiz(c *gin.Context) {
	attempt, err := co.Quiz.Current(models.DB, auth.User(c).ID)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// @Summary		Complete quiz
// @Description	Grades the answers. Passing the quiz with at least 60% correct answers unblocks UPI payments.
// @Tags			Quiz
// @Accept			json
// @Produce		json
// @Success		200		{object}	quiz.Outcome
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			answers	body		QuizAnswers	true	"Answers"
// @Router			/api/quiz/complete [post]
func (co Controller) CompleteQuiz(c *gin.Context) {
	var data QuizAnswers
	if err := bind(c, schemas.QuizComplete, &data); err != nil {
		httperror.Abort(c, err)
		return
	}

	outcome, err := co.Quiz.Complete(models.DB, auth.User(c).ID, data.Answers)
	if err != nil {
		httperror.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
