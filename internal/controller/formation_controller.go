package controller

import (
	"errors"
	"formation_backend/internal/service"
	"formation_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FormationController struct {
	FormationService *service.FormationService
}

func NewFormationController(formationService *service.FormationService) *FormationController {
	return &FormationController{FormationService: formationService}
}

// ---- univers ----

// ListUniverses godoc
// @Summary Liste des univers
// @Tags catalogue
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Universe}
// @Router /api/v1/universes [get]
func (c *FormationController) ListUniverses(ctx *gin.Context) {
	universes, err := c.FormationService.ListUniverses()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, universes)
}

// GetUniverse godoc
// @Summary Détail d'un univers avec ses formations
// @Tags catalogue
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de l'univers"
// @Success 200 {object} util.Response{data=model.Universe}
// @Failure 404 {object} util.Response
// @Router /api/v1/universes/{id} [get]
func (c *FormationController) GetUniverse(ctx *gin.Context) {
	universe, err := c.FormationService.GetUniverse(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, universe)
}

// CreateUniverse godoc
// @Summary Création d'un univers
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.UniverseRequest true "Univers"
// @Success 201 {object} util.Response{data=model.Universe}
// @Router /api/v1/admin/universes [post]
func (c *FormationController) CreateUniverse(ctx *gin.Context) {
	var req service.UniverseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	universe, err := c.FormationService.CreateUniverse(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, universe)
}

// UpdateUniverse godoc
// @Summary Mise à jour d'un univers
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de l'univers"
// @Param body body service.UniverseRequest true "Champs à modifier"
// @Success 200 {object} util.Response{data=model.Universe}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/universes/{id} [put]
func (c *FormationController) UpdateUniverse(ctx *gin.Context) {
	var req service.UniverseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	universe, err := c.FormationService.UpdateUniverse(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, universe)
}

// DeleteUniverse godoc
// @Summary Suppression d'un univers
// @Tags administration
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de l'univers"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/universes/{id} [delete]
func (c *FormationController) DeleteUniverse(ctx *gin.Context) {
	if err := c.FormationService.DeleteUniverse(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- formations ----

// ListFormations godoc
// @Summary Liste des formations
// @Tags catalogue
// @Produce json
// @Security ApiKeyAuth
// @Param universeId query int false "Filtrer par univers"
// @Success 200 {object} util.Response{data=[]model.Formation}
// @Router /api/v1/formations [get]
func (c *FormationController) ListFormations(ctx *gin.Context) {
	var universeID *uint
	if raw := ctx.Query("universeId"); raw != "" {
		id := util.MustParseUint(raw)
		universeID = &id
	}

	formations, err := c.FormationService.ListFormations(universeID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, formations)
}

// GetFormation godoc
// @Summary Vue apprenant d'une formation
// @Description Formation avec progression, verrouillage séquentiel et état du quiz
// @Tags catalogue
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Success 200 {object} util.Response{data=service.FormationView}
// @Failure 404 {object} util.Response
// @Router /api/v1/formations/{id} [get]
func (c *FormationController) GetFormation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.FormationService.GetFormationForLearner(util.MustParseUint(ctx.Param("id")), claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// CreateFormation godoc
// @Summary Création d'une formation
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.FormationRequest true "Formation"
// @Success 201 {object} util.Response{data=model.Formation}
// @Router /api/v1/admin/formations [post]
func (c *FormationController) CreateFormation(ctx *gin.Context) {
	var req service.FormationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	formation, err := c.FormationService.CreateFormation(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, formation)
}

// UpdateFormation godoc
// @Summary Mise à jour d'une formation
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param body body service.FormationRequest true "Champs à modifier"
// @Success 200 {object} util.Response{data=model.Formation}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/formations/{id} [put]
func (c *FormationController) UpdateFormation(ctx *gin.Context) {
	var req service.FormationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	formation, err := c.FormationService.UpdateFormation(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, formation)
}

// DeleteFormation godoc
// @Summary Suppression d'une formation et de son contenu
// @Tags administration
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/formations/{id} [delete]
func (c *FormationController) DeleteFormation(ctx *gin.Context) {
	if err := c.FormationService.DeleteFormation(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ---- leçons ----

// CreateLesson godoc
// @Summary Ajout d'une leçon à une formation
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param body body service.LessonRequest true "Leçon"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/formations/{id}/lessons [post]
func (c *FormationController) CreateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.FormationService.CreateLesson(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary Mise à jour d'une leçon
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "ID de la leçon"
// @Param body body service.LessonRequest true "Champs à modifier"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/lessons/{lessonId} [put]
func (c *FormationController) UpdateLesson(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.FormationService.UpdateLesson(util.MustParseUint(ctx.Param("lessonId")), req)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary Suppression d'une leçon
// @Tags administration
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "ID de la leçon"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/lessons/{lessonId} [delete]
func (c *FormationController) DeleteLesson(ctx *gin.Context) {
	if err := c.FormationService.DeleteLesson(util.MustParseUint(ctx.Param("lessonId"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type ReorderRequest struct {
	LessonIDs []uint `json:"lessonIds" binding:"required"`
}

// ReorderLessons godoc
// @Summary Réordonnancement des leçons
// @Description Réécrit la séquence pédagogique ; le verrouillage séquentiel suit ce nouvel ordre
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param body body ReorderRequest true "IDs des leçons dans le nouvel ordre"
// @Success 200 {object} util.Response
// @Router /api/v1/admin/formations/{id}/lessons/reorder [put]
func (c *FormationController) ReorderLessons(ctx *gin.Context) {
	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.FormationService.ReorderLessons(util.MustParseUint(ctx.Param("id")), req.LessonIDs); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetLesson godoc
// @Summary Accès à une leçon
// @Description Retourne la leçon si le verrou séquentiel est levé, 403 sinon
// @Tags apprentissage
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "ID de la formation"
// @Param lessonId path int true "ID de la leçon"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 403 {object} util.Response "Leçon verrouillée"
// @Failure 404 {object} util.Response
// @Router /api/v1/formations/{id}/lessons/{lessonId} [get]
func (c *FormationController) GetLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lesson, err := c.FormationService.CheckLessonAccess(
		util.MustParseUint(ctx.Param("id")),
		claims.UserID,
		util.MustParseUint(ctx.Param("lessonId")),
	)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonLocked):
			util.Error(ctx, 403, "Terminez d'abord les leçons précédentes")
		case errors.Is(err, util.ErrLessonNotInFormation), errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}
