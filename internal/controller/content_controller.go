package controller

import (
	"errors"
	"formation_backend/internal/service"
	"formation_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// UploadMedia godoc
// @Summary Téléversement du média d'une leçon
// @Description Vidéo et audio sont sondés avec ffprobe ; la durée obtenue alimente le calcul de progression
// @Tags administration
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "ID de la leçon"
// @Param file formData file true "Fichier média"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response "Type de fichier invalide"
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/lessons/{lessonId}/media [post]
func (c *ContentController) UploadMedia(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	lesson, err := c.ContentService.UploadMedia(ctx.Request.Context(), util.MustParseUint(ctx.Param("lessonId")), fileHeader)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, lesson)
}

type MediaTotalsRequest struct {
	TotalPages  *int `json:"totalPages"`
	TotalSlides *int `json:"totalSlides"`
}

// SetMediaTotals godoc
// @Summary Déclaration du nombre de pages ou de diapositives
// @Description Pour les documents non sondables ; le total déclaré sert de dénominateur à la progression
// @Tags administration
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "ID de la leçon"
// @Param body body MediaTotalsRequest true "Totaux"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 404 {object} util.Response
// @Router /api/v1/admin/lessons/{lessonId}/media/totals [put]
func (c *ContentController) SetMediaTotals(ctx *gin.Context) {
	var req MediaTotalsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.ContentService.SetMediaTotals(util.MustParseUint(ctx.Param("lessonId")), req.TotalPages, req.TotalSlides)
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
