package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admitra/portal-backend/internal/middleware"
	"github.com/admitra/portal-backend/internal/repository"
	"github.com/admitra/portal-backend/internal/response"
	"github.com/admitra/portal-backend/internal/service"
	"github.com/admitra/portal-backend/internal/validator"
)

// AuthHandler handles applicant and staff authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerApplicantRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Phone    string `json:"phone" binding:"required,min=6,max=20"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginApplicantRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginStaffRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterApplicant godoc
// POST /api/v1/auth/applicant/register
func (h *AuthHandler) RegisterApplicant(c *gin.Context) {
	var req registerApplicantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	applicant, err := h.authService.RegisterApplicant(c.Request.Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"applicant": applicant})
}

// LoginApplicant godoc
// POST /api/v1/auth/applicant/login
func (h *AuthHandler) LoginApplicant(c *gin.Context) {
	var req loginApplicantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, applicant, err := h.authService.LoginApplicant(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrSessionAlreadyActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "applicant": applicant})
}

// LogoutApplicant godoc
// POST /api/v1/auth/applicant/logout
func (h *AuthHandler) LogoutApplicant(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.LogoutApplicant(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"ok": true})
}

// LoginStaff godoc
// POST /api/v1/auth/staff/login
func (h *AuthHandler) LoginStaff(c *gin.Context) {
	var req loginStaffRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, staff, err := h.authService.LoginStaff(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token, "staff": staff})
}
