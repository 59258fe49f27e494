package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

// ErrNoQuestionsAvailable is returned when a department has neither a
// published question set nor a fallback bank.
var ErrNoQuestionsAvailable = errors.New("no questions available for department")

// questionCacheTTL bounds staleness if cache invalidation is ever missed.
const questionCacheTTL = 24 * time.Hour

// PublishedSetSource is the subset of question set storage the source needs.
type PublishedSetSource interface {
	LatestPublishedByDepartment(ctx context.Context, department string) (*model.QuestionSet, error)
}

// QuestionSource resolves the question bank to draw papers from. It reads
// through a Redis cache in front of Postgres and falls back to the built-in
// sample banks when a department has no published set.
type QuestionSource struct {
	sets PublishedSetSource
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewQuestionSource creates a new QuestionSource.
func NewQuestionSource(sets PublishedSetSource, rdb *redis.Client, log zerolog.Logger) *QuestionSource {
	return &QuestionSource{sets: sets, rdb: rdb, log: log}
}

// cachedBank is the Redis payload for a department's resolved bank.
type cachedBank struct {
	QuestionSetID *string              `json:"question_set_id"`
	Questions     []model.QuestionItem `json:"questions"`
}

// BankFor returns the question bank for a department and, when the bank
// comes from a published set, that set's ID.
func (s *QuestionSource) BankFor(ctx context.Context, department string) ([]model.QuestionItem, *string, error) {
	key := config.CacheKey.DepartmentQuestionsKey(department)

	// Fast path: warmed cache.
	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached cachedBank
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached.Questions) > 0 {
			return cached.Questions, cached.QuestionSetID, nil
		}
		// Corrupt entry. Drop it and fall through to Postgres.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("department", department).Msg("question cache read failed, using database")
	}

	qs, err := s.sets.LatestPublishedByDepartment(ctx, department)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, nil, err
		}
		// No published set. Sample banks keep the exam usable.
		bank := SampleBankFor(department)
		if len(bank) == 0 {
			return nil, nil, ErrNoQuestionsAvailable
		}
		return bank, nil, nil
	}

	id := qs.ID.String()
	s.warm(ctx, department, &id, qs.Questions)
	return qs.Questions, &id, nil
}

// Warm refreshes the cache entry for a department from its published set.
// Used after publishing so the first exam start does not pay the database
// round trip.
func (s *QuestionSource) Warm(ctx context.Context, department string) error {
	qs, err := s.sets.LatestPublishedByDepartment(ctx, department)
	if err != nil {
		if repository.IsNotFound(err) {
			return s.rdb.Del(ctx, config.CacheKey.DepartmentQuestionsKey(department)).Err()
		}
		return err
	}
	id := qs.ID.String()
	s.warm(ctx, department, &id, qs.Questions)
	return nil
}

func (s *QuestionSource) warm(ctx context.Context, department string, setID *string, questions []model.QuestionItem) {
	payload, err := json.Marshal(cachedBank{QuestionSetID: setID, Questions: questions})
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, config.CacheKey.DepartmentQuestionsKey(department), payload, questionCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("department", department).Msg("question cache warm failed")
	}
}
