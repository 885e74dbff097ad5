package handlers

import (
	"net/http"

	"knead/middleware"
	"knead/services/auth"
	"knead/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes account registration and session management.
type UserHandler struct {
	Auth auth.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authSvc auth.AuthService) *UserHandler {
	return &UserHandler{Auth: authSvc}
}

// RegisterHandler creates a new account and opens a session.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	user, token, err := h.Auth.Register(input.Email, input.Name, input.Password)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "registration failed", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// SignInHandler authenticates an account and opens a session.
func (h *UserHandler) SignInHandler(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	user, token, err := h.Auth.SignIn(input.Email, input.Password)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "sign-in failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// SignOutHandler revokes the current session.
func (h *UserHandler) SignOutHandler(c *gin.Context) {
	token := c.GetString("token")
	if err := h.Auth.Revoke(token); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "sign-out failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// MeHandler returns the session's resolved identity and capabilities.
func (h *UserHandler) MeHandler(c *gin.Context) {
	authCtx := middleware.GetAuthContext(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       authCtx.UserID,
		"email":    authCtx.Email,
		"provider": authCtx.IsProvider(),
		"admin":    authCtx.IsAdmin(),
	})
}
