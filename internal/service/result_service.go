package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

var ErrResultNotFound = errors.New("result not found")

// PortalStats is the staff dashboard summary.
type PortalStats struct {
	PublishedDepartments int `json:"published_departments"`
	Submissions          int `json:"submissions"`
	ActiveDepartments    int `json:"active_departments"`
}

// ResultService serves the staff review side: submitted attempt listings,
// per-question breakdowns, and dashboard statistics.
type ResultService struct {
	attempts    *repository.AttemptRepository
	sets        *repository.QuestionSetRepository
	departments *repository.DepartmentRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	attempts *repository.AttemptRepository,
	sets *repository.QuestionSetRepository,
	departments *repository.DepartmentRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{attempts: attempts, sets: sets, departments: departments, rdb: rdb, log: log}
}

// List retrieves submitted attempts, newest first.
func (s *ResultService) List(ctx context.Context, department string, page, perPage int) ([]model.AttemptResult, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.attempts.ListSubmitted(ctx, department, perPage, (page-1)*perPage)
}

// Detail retrieves one submitted attempt with its per-question verdicts.
// The verdicts come from the result list frozen at submit; nothing here
// regrades the paper.
func (s *ResultService) Detail(ctx context.Context, attemptID string) (*model.AttemptDetail, error) {
	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	if a.Status != model.AttemptSubmitted {
		return nil, ErrResultNotFound
	}

	detail := &model.AttemptDetail{
		AttemptResult: model.AttemptResult{
			ID:             a.ID,
			ApplicantID:    a.ApplicantID,
			Department:     a.Department,
			TotalQuestions: len(a.Paper),
			SubmittedAt:    a.SubmittedAt,
		},
		Slots: make([]model.SlotReview, 0, len(a.Paper)),
	}
	if a.ApplicantName != nil {
		detail.ApplicantName = *a.ApplicantName
	}
	if a.AdmissionFormID != nil {
		detail.AdmissionFormID = *a.AdmissionFormID
	}
	if a.ApplicantPhone != nil {
		detail.ApplicantPhone = *a.ApplicantPhone
	}
	if a.CorrectCount != nil {
		detail.CorrectCount = *a.CorrectCount
	}
	if a.ExamScore != nil {
		detail.ExamScore = *a.ExamScore
	}
	if a.WeightedScore != nil {
		detail.WeightedScore = *a.WeightedScore
	}

	verdicts := make(map[int]model.ResultItem, len(a.Results))
	for _, item := range a.Results {
		verdicts[item.SlotIndex] = item
	}
	for _, slot := range a.Paper {
		item := verdicts[slot.Index]
		detail.Slots = append(detail.Slots, model.SlotReview{
			Index:    slot.Index,
			Question: slot.Question,
			Answer:   item.GivenAnswer,
			Correct:  item.IsCorrect,
		})
	}
	return detail, nil
}

// Stats returns the dashboard summary. The submission total is read from
// the Redis counter the stats worker maintains; when the counter is absent
// it is rebuilt from Postgres.
func (s *ResultService) Stats(ctx context.Context) (*PortalStats, error) {
	stats := &PortalStats{}

	var err error
	if stats.PublishedDepartments, err = s.sets.CountPublishedDepartments(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveDepartments, err = s.departments.CountOpen(ctx, time.Now()); err != nil {
		return nil, err
	}

	total, err := s.rdb.Get(ctx, config.CacheKey.TotalSubmissionsKey()).Int()
	if err == nil {
		stats.Submissions = total
		return stats, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("submission counter read failed, using database")
	}

	dbTotal, byDept, err := s.attempts.CountSubmitted(ctx)
	if err != nil {
		return nil, err
	}
	stats.Submissions = dbTotal
	s.rebuildCounters(ctx, dbTotal, byDept)
	return stats, nil
}

// rebuildCounters re-seeds the Redis counters from a database census.
func (s *ResultService) rebuildCounters(ctx context.Context, total int, byDept map[string]int) {
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.TotalSubmissionsKey(), total, 0)
	for dept, n := range byDept {
		pipe.Set(ctx, config.CacheKey.DepartmentSubmissionsKey(dept), n, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Msg("submission counter rebuild failed")
	}
}
