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

// ProfileHandler handles applicant profile and department catalogue endpoints.
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type updateProfileRequest struct {
	Name            string   `json:"name" binding:"required,min=2,max=120"`
	AdmissionFormID string   `json:"admission_form_id" binding:"required,min=2,max=40"`
	Department      string   `json:"department" binding:"required"`
	SSCGPA          *float64 `json:"ssc_gpa" binding:"omitempty,min=0,max=5"`
	HSCGPA          *float64 `json:"hsc_gpa" binding:"omitempty,min=0,max=5"`
}

// GetProfile godoc
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	applicant, err := h.profileService.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrApplicantNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"applicant": applicant})
}

// UpdateProfile godoc
// PUT /api/v1/profile
// Stores the admission details: form ID, department choice, and GPAs.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req updateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	applicant, err := h.profileService.Update(c.Request.Context(), claims.UserID, service.ProfileUpdate{
		Name:            req.Name,
		AdmissionFormID: req.AdmissionFormID,
		Department:      req.Department,
		SSCGPA:          req.SSCGPA,
		HSCGPA:          req.HSCGPA,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateAdmissionFormID):
			response.Fail(c, http.StatusConflict, response.ErrAdmissionFormIDInUse)
		case errors.Is(err, service.ErrNoDepartmentSelected):
			response.Fail(c, http.StatusBadRequest, response.ErrNoDepartmentSelected)
		case errors.Is(err, service.ErrDepartmentClosed):
			response.Fail(c, http.StatusConflict, response.ErrDepartmentClosed)
		case errors.Is(err, service.ErrApplicantNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"applicant": applicant})
}

// ListDepartments godoc
// GET /api/v1/departments
func (h *ProfileHandler) ListDepartments(c *gin.Context) {
	departments, err := h.profileService.Departments(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"departments": departments})
}
