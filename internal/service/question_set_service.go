package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

var (
	ErrQuestionSetNotFound = errors.New("question set not found")
	ErrQuestionSetNotDraft = errors.New("question set is not in draft status")
	ErrInvalidQuestion     = errors.New("invalid question")
)

// QuestionSetService manages the authoring lifecycle of question banks:
// draft creation, review, and publishing.
type QuestionSetService struct {
	sets   *repository.QuestionSetRepository
	source *QuestionSource
	log    zerolog.Logger
}

// NewQuestionSetService creates a new QuestionSetService.
func NewQuestionSetService(sets *repository.QuestionSetRepository, source *QuestionSource, log zerolog.Logger) *QuestionSetService {
	return &QuestionSetService{sets: sets, source: source, log: log}
}

// Create validates every question and stores a new DRAFT set.
func (s *QuestionSetService) Create(ctx context.Context, department, title string, questions []model.QuestionItem, createdBy int64) (*model.QuestionSet, error) {
	for i := range questions {
		if questions[i].ID == 0 {
			questions[i].ID = i + 1
		}
		if err := questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuestion, err)
		}
	}

	qs := &model.QuestionSet{
		Department: department,
		Title:      title,
		Questions:  questions,
		CreatedBy:  &createdBy,
	}
	if err := s.sets.Create(ctx, qs); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("question_set_id", qs.ID.String()).
		Str("department", department).
		Int("questions", len(questions)).
		Msg("question set drafted")
	return qs, nil
}

// Get retrieves a set with its full question payload for staff review.
func (s *QuestionSetService) Get(ctx context.Context, id string) (*model.QuestionSet, error) {
	qs, err := s.sets.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuestionSetNotFound
		}
		return nil, err
	}
	return qs, nil
}

// List retrieves set summaries, optionally filtered by department.
func (s *QuestionSetService) List(ctx context.Context, department string) ([]model.QuestionSetSummary, error) {
	return s.sets.List(ctx, department)
}

// Publish makes a draft set live for its department and warms the question
// cache so the next exam start serves from Redis. Re-publishing a live set
// is a no-op.
func (s *QuestionSetService) Publish(ctx context.Context, id string) (*model.QuestionSet, error) {
	qs, err := s.sets.Publish(ctx, id)
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, ErrQuestionSetNotFound
		case errors.Is(err, repository.ErrNotDraft):
			return nil, ErrQuestionSetNotDraft
		}
		return nil, err
	}

	if err := s.source.Warm(ctx, qs.Department); err != nil {
		// Publishing succeeded; the read path self-heals from Postgres.
		s.log.Warn().Err(err).Str("department", qs.Department).Msg("question cache warm after publish failed")
	}

	s.log.Info().
		Str("question_set_id", qs.ID.String()).
		Str("department", qs.Department).
		Msg("question set published")
	return qs, nil
}
