package controller

import (
	"errors"
	"formation_backend/internal/service"
	"formation_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuiz godoc
// @Summary Quiz d'une formation, vue apprenant
// @Description Les bonnes réponses ne sont jamais exposées avant la soumission
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Success 200 {object} util.Response{data=service.StudentQuiz}
// @Failure 404 {object} util.Response
// @Router /api/v1/formations/{id}/quiz [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.GetForLearner(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, quiz)
}

// StartAttempt godoc
// @Summary Démarrage d'une tentative
// @Description Une tentative en cours est reprise telle quelle, le chronomètre ne repart pas
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "ID du quiz"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Failure 404 {object} util.Response
// @Router /api/v1/quizzes/{quizId}/attempts [post]
func (c *QuizController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.QuizService.StartAttempt(claims.UserID, util.MustParseUint(ctx.Param("quizId")))
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, attempt)
}

// GetAttempt godoc
// @Summary État d'une tentative
// @Description Retourne les réponses saisies et le compte à rebours serveur ; une tentative expirée est soumise d'office
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param attemptId path string true "ID de la tentative"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 404 {object} util.Response
// @Router /api/v1/attempts/{attemptId} [get]
func (c *QuizController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.GetAttempt(claims.UserID, ctx.Param("attemptId"))
	if err != nil {
		c.renderAttemptError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SaveAnswer godoc
// @Summary Sauvegarde d'une réponse
// @Description Choix unique : remplacement ; choix multiples : bascule ; texte libre : remplacement
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param attemptId path string true "ID de la tentative"
// @Param body body service.SaveAnswerRequest true "Réponse"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "Tentative déjà soumise"
// @Router /api/v1/attempts/{attemptId}/answers [put]
func (c *QuizController) SaveAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuizService.SaveAnswer(claims.UserID, ctx.Param("attemptId"), req); err != nil {
		c.renderAttemptError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SubmitAttempt godoc
// @Summary Soumission et correction
// @Description Corrige la tentative côté serveur et retourne le résultat
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param attemptId path string true "ID de la tentative"
// @Success 200 {object} util.Response{data=service.QuizResult}
// @Failure 409 {object} util.Response "Tentative déjà soumise"
// @Router /api/v1/attempts/{attemptId}/submit [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.QuizService.Submit(claims.UserID, ctx.Param("attemptId"))
	if err != nil {
		c.renderAttemptError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// RestartAttempt godoc
// @Summary Recommencer le quiz
// @Description Réinitialise réponses, chronomètre et résultat
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param attemptId path string true "ID de la tentative"
// @Success 201 {object} util.Response{data=model.QuizAttempt}
// @Failure 409 {object} util.Response "Tentative encore en cours"
// @Router /api/v1/attempts/{attemptId}/restart [post]
func (c *QuizController) RestartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempt, err := c.QuizService.Restart(claims.UserID, ctx.Param("attemptId"))
	if err != nil {
		c.renderAttemptError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

func (c *QuizController) renderAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuizNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAttemptCompleted):
		util.Error(ctx, 409, "Cette tentative a déjà été soumise")
	case errors.Is(err, util.ErrAttemptInProgress):
		util.Error(ctx, 409, "Cette tentative est encore en cours")
	default:
		util.LogInternalError(ctx, err)
	}
}

// ---- administration ----

// CreateQuiz godoc
// @Summary Création du quiz d'une formation
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param body body service.QuizRequest true "Quiz"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Router /api/v1/admin/formations/{id}/quiz [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Create(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// GetQuizAdmin godoc
// @Summary Quiz avec corrigé, vue administration
// @Tags administration
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "ID du quiz"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/quizzes/{quizId} [get]
func (c *QuizController) GetQuizAdmin(ctx *gin.Context) {
	quiz, err := c.QuizService.GetAdmin(util.MustParseUint(ctx.Param("quizId")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary Mise à jour du quiz
// @Description Le remplacement des questions ne touche pas les tentatives déjà corrigées
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "ID du quiz"
// @Param body body service.QuizRequest true "Champs à modifier"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/quizzes/{quizId} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Update(util.MustParseUint(ctx.Param("quizId")), req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary Suppression du quiz
// @Tags administration
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "ID du quiz"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/quizzes/{quizId} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	if err := c.QuizService.Delete(util.MustParseUint(ctx.Param("quizId"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
