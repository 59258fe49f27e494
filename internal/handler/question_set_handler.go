package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/admitra/portal-backend/internal/middleware"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/response"
	"github.com/admitra/portal-backend/internal/service"
	"github.com/admitra/portal-backend/internal/validator"
)

// QuestionSetHandler handles staff question bank authoring endpoints.
type QuestionSetHandler struct {
	questionSetService *service.QuestionSetService
}

// NewQuestionSetHandler creates a new QuestionSetHandler.
func NewQuestionSetHandler(questionSetService *service.QuestionSetService) *QuestionSetHandler {
	return &QuestionSetHandler{questionSetService: questionSetService}
}

type createQuestionSetRequest struct {
	Department string               `json:"department" binding:"required"`
	Title      string               `json:"title" binding:"required,min=2,max=200"`
	Questions  []model.QuestionItem `json:"questions" binding:"required,min=1"`
}

// CreateQuestionSet godoc
// POST /api/v1/staff/question-sets
// Creates a new DRAFT question set.
func (h *QuestionSetHandler) CreateQuestionSet(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req createQuestionSetRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	qs, err := h.questionSetService.Create(c.Request.Context(), req.Department, req.Title, req.Questions, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"questions": err.Error()})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question_set": qs})
}

// ListQuestionSets godoc
// GET /api/v1/staff/question-sets?department=...
func (h *QuestionSetHandler) ListQuestionSets(c *gin.Context) {
	sets, err := h.questionSetService.List(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_sets": sets})
}

// GetQuestionSet godoc
// GET /api/v1/staff/question-sets/:id
// Returns the full set, answer keys included, for review.
func (h *QuestionSetHandler) GetQuestionSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	qs, err := h.questionSetService.Get(c.Request.Context(), id.String())
	if err != nil {
		if errors.Is(err, service.ErrQuestionSetNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"question_set": qs,
		"questions":    qs.Questions,
	})
}

// PublishQuestionSet godoc
// POST /api/v1/staff/question-sets/:id/publish
// Makes a draft live for its department. Idempotent for already live sets.
func (h *QuestionSetHandler) PublishQuestionSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	qs, err := h.questionSetService.Publish(c.Request.Context(), id.String())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionSetNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuestionSetNotDraft):
			response.Fail(c, http.StatusConflict, response.ErrQuestionSetNotDraft)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question_set": qs})
}
