package controller

import (
	"errors"
	"formation_backend/internal/service"
	"formation_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ObservationRequest carries one raw reading from a media viewer. Kind
// selects the variant; the fields of the other variants are ignored.
type ObservationRequest struct {
	Kind string `json:"kind" binding:"required,oneof=paged slides time"`

	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`

	CurrentSlide int `json:"currentSlide"`
	TotalSlides  int `json:"totalSlides"`

	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

func (r ObservationRequest) toObservation() service.Observation {
	switch r.Kind {
	case "paged":
		return service.PagedObservation{CurrentPage: r.CurrentPage, TotalPages: r.TotalPages}
	case "slides":
		return service.SlideObservation{CurrentSlide: r.CurrentSlide, TotalSlides: r.TotalSlides}
	default:
		return service.TimeObservation{CurrentTime: r.CurrentTime, Duration: r.Duration}
	}
}

// RecordObservation godoc
// @Summary Enregistrement d'une observation de lecture
// @Description Reçue toutes les ~2 secondes pendant qu'une leçon est ouverte ; la progression ne régresse jamais
// @Tags progression
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param lessonId path int true "ID de la leçon"
// @Param body body ObservationRequest true "Observation"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Failure 400 {object} util.Response "Type d'observation incompatible"
// @Failure 403 {object} util.Response "Leçon verrouillée"
// @Failure 404 {object} util.Response
// @Router /api/v1/formations/{id}/lessons/{lessonId}/progress [post]
func (c *ProgressController) RecordObservation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ObservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.ProgressService.Record(
		util.MustParseUint(ctx.Param("id")),
		claims.UserID,
		util.MustParseUint(ctx.Param("lessonId")),
		req.toObservation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrLessonNotInFormation):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrLessonLocked):
			util.Error(ctx, 403, "Terminez d'abord les leçons précédentes")
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	// A not-ready observation records nothing; the viewer just keeps
	// polling.
	util.Success(ctx, record)
}

// GetLessonProgress godoc
// @Summary Progression d'une leçon
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param lessonId path int true "ID de la leçon"
// @Success 200 {object} util.Response{data=model.LessonProgress}
// @Router /api/v1/formations/{id}/lessons/{lessonId}/progress [get]
func (c *ProgressController) GetLessonProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	record, err := c.ProgressService.Get(
		util.MustParseUint(ctx.Param("id")),
		claims.UserID,
		util.MustParseUint(ctx.Param("lessonId")),
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// GetFormationProgress godoc
// @Summary Progression complète d'une formation
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Success 200 {object} util.Response
// @Router /api/v1/formations/{id}/progress [get]
func (c *ProgressController) GetFormationProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.ProgressService.GetFormationProgress(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// GetResumeDecision godoc
// @Summary Décision reprendre ou recommencer
// @Description Pour les médias temporels uniquement ; l'invite n'est proposée qu'une fois par session
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param lessonId path int true "ID de la leçon"
// @Success 200 {object} util.Response{data=service.ResumeDecision}
// @Failure 404 {object} util.Response
// @Router /api/v1/formations/{id}/lessons/{lessonId}/resume [get]
func (c *ProgressController) GetResumeDecision(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	decision, err := c.ProgressService.GetResumeDecision(
		util.MustParseUint(ctx.Param("id")),
		claims.UserID,
		util.MustParseUint(ctx.Param("lessonId")),
	)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, decision)
}

// FlushProgress godoc
// @Summary Balise de fermeture
// @Description Envoyée à la fermeture du lecteur ; force l'écriture immédiate des dernières secondes de session
// @Tags progression
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Success 200 {object} util.Response
// @Router /api/v1/formations/{id}/progress/flush [post]
func (c *ProgressController) FlushProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	c.ProgressService.FlushFormation(util.MustParseUint(ctx.Param("id")), claims.UserID)
	util.Success(ctx, nil)
}
