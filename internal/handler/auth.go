package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmtech/farm-market-api/internal/dto"
	"github.com/farmtech/farm-market-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondErr(c, http.StatusConflict, kindConflict, "user already exists")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondErr(c, http.StatusUnauthorized, kindUnauthorized, "invalid credentials")
			return
		}
		respondErr(c, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}

	c.JSON(http.StatusOK, resp)
}
