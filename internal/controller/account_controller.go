package controller

import (
	"net/http"

	"storefront-api/internal/dto"
	"storefront-api/internal/middleware"
	"storefront-api/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func NewAuthController(auth *service.AuthService, users *service.UserService) *AuthController {
	return &AuthController{Auth: auth, Users: users}
}

// POST /auth/register
func (ctl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	u, token, err := ctl.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{Message: "User registered successfully", Token: token, User: dto.NewUserSummary(u)})
}

// POST /auth/login
func (ctl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, token, err := ctl.Auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{Message: "Login successful", Token: token, User: dto.NewUserSummary(u)})
}

// GET /auth/me y GET /users/profile
func (ctl *AuthController) Me(c *gin.Context) {
	u, err := ctl.Users.Profile(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /users/profile
func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := ctl.Users.UpdateProfile(c.Request.Context(), c.GetString(middleware.UserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}

// PUT /users/change-password
func (ctl *AuthController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ctl.Users.ChangePassword(c.Request.Context(), c.GetString(middleware.UserIDKey), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
