package controller

import (
	"errors"
	"formation_backend/internal/service"
	"formation_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary Inscription d'un nouvel utilisateur
// @Description Crée un compte apprenant et retourne un jeton JWT
// @Tags authentification
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "Informations d'inscription"
// @Success 201 {object} util.Response{data=service.AuthResponse} "Compte créé"
// @Failure 400 {object} util.Response "Paramètres invalides"
// @Failure 409 {object} util.Response "Email déjà enregistré"
// @Router /api/v1/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AuthService.Register(req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Error(ctx, 409, "Cet email est déjà enregistré")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, resp)
}

// Login godoc
// @Summary Connexion
// @Description Vérifie les identifiants et retourne un jeton JWT
// @Tags authentification
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "Identifiants"
// @Success 200 {object} util.Response{data=service.AuthResponse} "Succès"
// @Failure 401 {object} util.Response "Identifiants invalides"
// @Router /api/v1/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AuthService.Login(req)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, resp)
}

// GetProfile godoc
// @Summary Profil de l'utilisateur courant
// @Tags authentification
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Succès"
// @Failure 401 {object} util.Response "Non autorisé"
// @Router /api/v1/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetProfile(claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, user)
}
