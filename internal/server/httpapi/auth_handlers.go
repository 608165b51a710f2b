package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant-service/internal/common"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "user_exists"})
			return
		}
		h.logger.Error(c.Request.Context(), "error registering user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, pair, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		h.logger.Error(c.Request.Context(), "error logging in", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "bearer",
		RefreshToken: pair.RefreshToken,
		User:         toUserResponse(user),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, pair, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenNotFound),
			errors.Is(err, common.ErrTokenRevoked),
			errors.Is(err, common.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": tokenErrorCode(err)})
		default:
			h.logger.Error(c.Request.Context(), "error rotating refresh token", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		}
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "bearer",
		RefreshToken: pair.RefreshToken,
		User:         toUserResponse(user),
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *handlers) logout(c *gin.Context) {
	var req logoutRequest
	// body is optional: logout without a refresh secret revokes access only
	_ = c.ShouldBindJSON(&req)

	res := h.users.Logout(c.Request.Context(), c.GetString(tokenKey), req.RefreshToken)

	c.JSON(http.StatusOK, gin.H{
		"revoked":         res.AccessRevoked || res.RefreshRevoked,
		"revoked_access":  res.AccessRevoked,
		"revoked_refresh": res.RefreshRevoked,
	})
}

func (h *handlers) me(c *gin.Context) {
	claims := requestClaims(c)

	user, err := h.users.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		h.logger.Error(c.Request.Context(), "error loading user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     toUserResponse(user),
		"greeting": fmt.Sprintf("Hello, %s!", user.UserName),
	})
}
