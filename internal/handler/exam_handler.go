package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/admitra/portal-backend/internal/middleware"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
	"github.com/admitra/portal-backend/internal/response"
	"github.com/admitra/portal-backend/internal/service"
	"github.com/admitra/portal-backend/internal/validator"
)

// ExamHandler handles the applicant-facing exam lifecycle endpoints.
type ExamHandler struct {
	attemptService *service.AttemptService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(attemptService *service.AttemptService) *ExamHandler {
	return &ExamHandler{attemptService: attemptService}
}

type saveAnswersRequest struct {
	Answers model.ResponseMap `json:"answers" binding:"required"`
}

// StartAttempt godoc
// POST /api/v1/exam/attempts
// Returns the applicant's live attempt, creating one if none exists.
func (h *ExamHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.attemptService.Start(c.Request.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoDepartmentSelected):
			response.Fail(c, http.StatusBadRequest, response.ErrNoDepartmentSelected)
		case errors.Is(err, service.ErrDepartmentClosed):
			response.Fail(c, http.StatusConflict, response.ErrDepartmentClosed)
		case errors.Is(err, service.ErrNoQuestionsAvailable):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestionsAvailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": session})
}

// GetActiveAttempt godoc
// GET /api/v1/exam/attempts
// Resolves the applicant's live attempt without an ID, for reconnects.
func (h *ExamHandler) GetActiveAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.attemptService.Active(c.Request.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoDepartmentSelected):
			response.Fail(c, http.StatusBadRequest, response.ErrNoDepartmentSelected)
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		case errors.Is(err, service.ErrAttemptExpired):
			response.Fail(c, http.StatusGone, response.ErrAttemptExpired)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": session})
}

// GetAttempt godoc
// GET /api/v1/exam/attempts/:id
func (h *ExamHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.attemptService.Get(c.Request.Context(), claims.UserID, attemptID.String())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		case errors.Is(err, service.ErrAttemptExpired):
			response.Fail(c, http.StatusGone, response.ErrAttemptExpired)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": session})
}

// SaveAnswers godoc
// PATCH /api/v1/exam/attempts/:id/answers
// Merges an answer delta into the attempt. Unlisted slots are untouched.
func (h *ExamHandler) SaveAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req saveAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.attemptService.Save(c.Request.Context(), claims.UserID, attemptID.String(), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		case errors.Is(err, service.ErrAttemptExpired):
			response.Fail(c, http.StatusBadRequest, response.ErrAttemptExpired)
		case errors.Is(err, repository.ErrAlreadySubmitted):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrInvalidAnswerDelta):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": session})
}

// SubmitAttempt godoc
// POST /api/v1/exam/attempts/:id/submit
// Finalizes the attempt. Safe to call more than once; repeats report already=true.
func (h *ExamHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, attemptID.String())
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
