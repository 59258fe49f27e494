package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitra/portal-backend/internal/model"
	"github.com/admitra/portal-backend/internal/repository"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeAttemptStore struct {
	attempts map[uuid.UUID]*model.Attempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[uuid.UUID]*model.Attempt)}
}

func (s *fakeAttemptStore) FindActive(_ context.Context, applicantID int64, department string) (*model.Attempt, error) {
	for _, a := range s.attempts {
		if a.ApplicantID == applicantID && a.Department == department && a.Status == model.AttemptActive {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) Create(ctx context.Context, a *model.Attempt) (*model.Attempt, error) {
	if existing, err := s.FindActive(ctx, a.ApplicantID, a.Department); err == nil {
		return existing, nil
	}
	a.ID = uuid.New()
	a.Status = model.AttemptActive
	a.Responses = model.ResponseMap{}
	s.attempts[a.ID] = a
	return a, nil
}

func (s *fakeAttemptStore) ApplyResponseDelta(_ context.Context, attemptID string, applicantID int64, delta model.ResponseMap) (time.Time, error) {
	id, _ := uuid.Parse(attemptID)
	a, ok := s.attempts[id]
	if !ok || a.ApplicantID != applicantID || a.Status != model.AttemptActive {
		return time.Time{}, repository.ErrAlreadySubmitted
	}
	if a.Responses == nil {
		a.Responses = model.ResponseMap{}
	}
	for k, v := range delta {
		a.Responses[k] = v
	}
	return a.EndAt, nil
}

func (s *fakeAttemptStore) TransitionToSubmitted(_ context.Context, a *model.Attempt) error {
	stored, ok := s.attempts[a.ID]
	if !ok || stored.ApplicantID != a.ApplicantID || stored.Status != model.AttemptActive {
		return repository.ErrAlreadySubmitted
	}
	now := time.Now()
	stored.Status = model.AttemptSubmitted
	stored.SubmittedAt = &now
	stored.Results = a.Results
	stored.CorrectCount = a.CorrectCount
	stored.ExamScore = a.ExamScore
	stored.WeightedScore = a.WeightedScore
	stored.ApplicantName = a.ApplicantName
	stored.AdmissionFormID = a.AdmissionFormID
	stored.ApplicantPhone = a.ApplicantPhone
	a.Status = stored.Status
	a.SubmittedAt = stored.SubmittedAt
	return nil
}

func (s *fakeAttemptStore) GetByIDForApplicant(_ context.Context, attemptID string, applicantID int64) (*model.Attempt, error) {
	id, err := uuid.Parse(attemptID)
	if err != nil {
		return nil, pgx.ErrNoRows
	}
	a, ok := s.attempts[id]
	if !ok || a.ApplicantID != applicantID {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

type fakeApplicantSource struct {
	applicants map[int64]*model.Applicant
}

func (s *fakeApplicantSource) GetByID(_ context.Context, id int64) (*model.Applicant, error) {
	a, ok := s.applicants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

type fakeBankProvider struct {
	bank []model.QuestionItem
}

func (p *fakeBankProvider) BankFor(context.Context, string) ([]model.QuestionItem, *string, error) {
	if len(p.bank) == 0 {
		return nil, nil, ErrNoQuestionsAvailable
	}
	return p.bank, nil, nil
}

type fakeDepartmentSource struct {
	departments map[string]*model.Department
}

func (s *fakeDepartmentSource) GetBySlug(_ context.Context, slug string) (*model.Department, error) {
	d, ok := s.departments[slug]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) NotifySubmitted(_ context.Context, attemptID, _ string) {
	n.events = append(n.events, attemptID)
}

// ─── Fixtures ───────────────────────────────────────────────────────────────

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func newTestServiceWithDept(t *testing.T, dept *model.Department) (*AttemptService, *fakeAttemptStore, *fakeNotifier, *time.Time) {
	t.Helper()

	slug := dept.Slug
	applicants := &fakeApplicantSource{applicants: map[int64]*model.Applicant{
		1: {
			ID:              1,
			Name:            "Test Applicant",
			Phone:           "01700000001",
			AdmissionFormID: strPtr("AF-2026-0001"),
			Department:      &slug,
			SSCGPA:          f64Ptr(4.0),
			HSCGPA:          f64Ptr(4.5),
		},
		2: {ID: 2, Name: "No Department", Phone: "01700000002"},
	}}

	store := newFakeAttemptStore()
	notifier := &fakeNotifier{}
	departments := &fakeDepartmentSource{departments: map[string]*model.Department{slug: dept}}
	svc := NewAttemptService(store, applicants, &fakeBankProvider{bank: SampleCSEBank()},
		departments, notifier, time.Hour, zerolog.Nop())

	clock := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	return svc, store, notifier, &clock
}

func newTestService(t *testing.T) (*AttemptService, *fakeAttemptStore, *fakeNotifier, *time.Time) {
	t.Helper()
	return newTestServiceWithDept(t, &model.Department{Slug: "cse", Open: true, PointsPerCorrect: 1})
}

func delta(pairs map[string]string) model.ResponseMap {
	m := model.ResponseMap{}
	for k, v := range pairs {
		m[k] = model.NewAnswer(json.RawMessage(v))
	}
	return m
}

// ─── Start ──────────────────────────────────────────────────────────────────

func TestStartCreatesFullPaper(t *testing.T) {
	svc, _, _, clock := newTestService(t)

	session, err := svc.Start(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, session.Questions, PaperSize)
	assert.Equal(t, model.AttemptActive, session.Status)
	assert.Equal(t, clock.Add(time.Hour), session.EndAt)
	assert.Empty(t, session.Responses)

	// The client payload must never leak answer keys.
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct_index")
	assert.NotContains(t, string(raw), "answer_text")
}

func TestStartReusesLiveAttempt(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	// Save an answer, advance the clock inside the window, start again.
	_, err = svc.Save(ctx, 1, first.ID.String(), delta(map[string]string{"0": "1"}))
	require.NoError(t, err)
	*clock = clock.Add(30 * time.Minute)

	second, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Contains(t, second.Responses, "0")
}

func TestStartAfterExpiryCreatesNewAttempt(t *testing.T) {
	svc, store, _, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)

	second, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The stale attempt was finalized, not abandoned.
	old := store.attempts[first.ID]
	assert.Equal(t, model.AttemptSubmitted, old.Status)
	require.NotNil(t, old.ExamScore)
}

func TestStartWithoutDepartment(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Start(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNoDepartmentSelected)
}

func TestStartClosedDepartment(t *testing.T) {
	svc, _, _, _ := newTestServiceWithDept(t, &model.Department{Slug: "cse", Open: false})

	_, err := svc.Start(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDepartmentClosed)
}

func TestStartOutsideAdmissionWindow(t *testing.T) {
	windowStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	svc, _, _, clock := newTestServiceWithDept(t, &model.Department{
		Slug:        "cse",
		Open:        true,
		WindowStart: &windowStart,
	})
	ctx := context.Background()

	// The clock starts at 2026-08-01, a month before the window opens.
	_, err := svc.Start(ctx, 1)
	assert.ErrorIs(t, err, ErrDepartmentClosed)

	*clock = windowStart.Add(time.Minute)
	_, err = svc.Start(ctx, 1)
	assert.NoError(t, err)
}

func TestStartSnapshotsDepartmentPoints(t *testing.T) {
	svc, store, _, _ := newTestServiceWithDept(t, &model.Department{
		Slug:             "cse",
		Open:             true,
		PointsPerCorrect: 2,
	})
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	stored := store.attempts[session.ID]
	assert.Equal(t, 2, stored.PointsPerAnswer)

	// Answer slot 0 correctly; the exam score uses the department's marks.
	q0 := stored.Paper[0].Question
	var correct string
	switch q0.Type {
	case model.QuestionFillInBlank:
		raw, _ := json.Marshal(q0.AnswerText)
		correct = string(raw)
	default:
		raw, _ := json.Marshal(q0.CorrectIndex)
		correct = string(raw)
	}
	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": correct}))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 1, session.ID.String())
	require.NoError(t, err)

	require.NotNil(t, stored.ExamScore)
	assert.Equal(t, 1, *stored.CorrectCount)
	assert.Equal(t, 2, *stored.ExamScore)
}

// ─── Save ───────────────────────────────────────────────────────────────────

func TestSaveMergesDelta(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	id := session.ID.String()

	_, err = svc.Save(ctx, 1, id, delta(map[string]string{"0": "1", "1": `"404"`}))
	require.NoError(t, err)

	// A later delta for other slots leaves earlier answers alone.
	_, err = svc.Save(ctx, 1, id, delta(map[string]string{"2": "0"}))
	require.NoError(t, err)

	responses := store.attempts[session.ID].Responses
	assert.Len(t, responses, 3)

	// Re-sending the same delta is harmless.
	_, err = svc.Save(ctx, 1, id, delta(map[string]string{"2": "0"}))
	require.NoError(t, err)
	assert.Len(t, store.attempts[session.ID].Responses, 3)
}

func TestSaveOverwritesSameSlot(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": "1"}))
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": "2"}))
	require.NoError(t, err)

	idx, ok := store.attempts[session.ID].Responses["0"].AsOptionIndex()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestSaveRejectsInvalidDelta(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	id := session.ID.String()

	cases := []model.ResponseMap{
		delta(map[string]string{"notanumber": "1"}),
		delta(map[string]string{"-1": "1"}),
		delta(map[string]string{"50": "1"}), // past the last slot
		delta(map[string]string{"0": `{"nested": true}`}),
		delta(map[string]string{"0": `[1, 2]`}),
	}
	for _, bad := range cases {
		_, err := svc.Save(ctx, 1, id, bad)
		assert.ErrorIs(t, err, ErrInvalidAnswerDelta)
	}

	// Nothing from the rejected payloads was applied.
	assert.Empty(t, store.attempts[session.ID].Responses)
}

func TestSaveAfterExpiry(t *testing.T) {
	svc, store, _, clock := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	*clock = clock.Add(61 * time.Minute)

	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": "1"}))
	assert.ErrorIs(t, err, ErrAttemptExpired)
	assert.Empty(t, store.attempts[session.ID].Responses)
}

func TestSaveAfterSubmit(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 1, session.ID.String())
	require.NoError(t, err)

	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": "1"}))
	assert.ErrorIs(t, err, repository.ErrAlreadySubmitted)
}

func TestSaveUnknownAttempt(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Save(context.Background(), 1, uuid.NewString(), delta(map[string]string{"0": "1"}))
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

// ─── Submit ─────────────────────────────────────────────────────────────────

func TestSubmitGradesAndSnapshots(t *testing.T) {
	svc, store, notifier, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	// Answer slot 0 correctly using the frozen paper's answer key.
	stored := store.attempts[session.ID]
	q0 := stored.Paper[0].Question
	var correct string
	switch q0.Type {
	case model.QuestionFillInBlank:
		raw, _ := json.Marshal(q0.AnswerText)
		correct = string(raw)
	default:
		raw, _ := json.Marshal(q0.CorrectIndex)
		correct = string(raw)
	}
	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": correct}))
	require.NoError(t, err)

	result, err := svc.Submit(ctx, 1, session.ID.String())
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.False(t, result.Already)

	assert.Equal(t, model.AttemptSubmitted, stored.Status)
	require.NotNil(t, stored.CorrectCount)
	assert.Equal(t, 1, *stored.CorrectCount)
	assert.Equal(t, 1, *stored.ExamScore)
	// 4.0*4 + 4.5*6 = 43
	assert.InDelta(t, 43.0, *stored.WeightedScore, 1e-9)

	require.NotNil(t, stored.ApplicantName)
	assert.Equal(t, "Test Applicant", *stored.ApplicantName)
	assert.Equal(t, "AF-2026-0001", *stored.AdmissionFormID)
	assert.Equal(t, "01700000001", *stored.ApplicantPhone)

	// The per-slot verdicts are frozen onto the attempt, one per slot in
	// slot order, and survive serialization of the stored document.
	require.Len(t, stored.Results, PaperSize)
	for i, item := range stored.Results {
		assert.Equal(t, i, item.SlotIndex)
	}
	assert.True(t, stored.Results[0].IsCorrect)
	require.NotNil(t, stored.Results[0].GivenAnswer)
	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"results"`)

	assert.Equal(t, []string{session.ID.String()}, notifier.events)
}

func TestSubmitTwice(t *testing.T) {
	svc, store, notifier, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	id := session.ID.String()

	first, err := svc.Submit(ctx, 1, id)
	require.NoError(t, err)
	assert.False(t, first.Already)

	scoreAfterFirst := *store.attempts[session.ID].ExamScore

	second, err := svc.Submit(ctx, 1, id)
	require.NoError(t, err)
	assert.True(t, second.OK)
	assert.True(t, second.Already)

	// No rescore, no duplicate notification.
	assert.Equal(t, scoreAfterFirst, *store.attempts[session.ID].ExamScore)
	assert.Len(t, notifier.events, 1)
}

func TestSubmitAfterExpiryIsAccepted(t *testing.T) {
	svc, store, _, clock := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)

	result, err := svc.Submit(ctx, 1, session.ID.String())
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, model.AttemptSubmitted, store.attempts[session.ID].Status)
}

func TestSubmitUnknownAttempt(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), 1, uuid.NewString())
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

// ─── Get ────────────────────────────────────────────────────────────────────

func TestGetReturnsSavedState(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"3": "1"}))
	require.NoError(t, err)

	got, err := svc.Get(ctx, 1, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Contains(t, got.Responses, "3")
	assert.Len(t, got.Questions, PaperSize)
}

func TestGetExpiredActiveAttempt(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)

	_, err = svc.Get(ctx, 1, session.ID.String())
	assert.ErrorIs(t, err, ErrAttemptExpired)
}

func TestGetSubmittedAttempt(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 1, session.ID.String())
	require.NoError(t, err)

	// Submitted attempts stay readable even after the window.
	*clock = clock.Add(2 * time.Hour)

	got, err := svc.Get(ctx, 1, session.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.AttemptSubmitted, got.Status)
	assert.NotNil(t, got.SubmittedAt)
}

func TestGetOtherApplicantsAttempt(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, session.ID.String())
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

// ─── Active ─────────────────────────────────────────────────────────────────

func TestActiveResolvesLiveAttempt(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, session.ID.String(), delta(map[string]string{"0": "1"}))
	require.NoError(t, err)

	// A reconnecting client has no attempt ID, only its token.
	got, err := svc.Active(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Contains(t, got.Responses, "0")
}

func TestActiveWithoutAttempt(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Active(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestActiveAfterExpiry(t *testing.T) {
	svc, _, _, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, 1)
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)

	_, err = svc.Active(ctx, 1)
	assert.ErrorIs(t, err, ErrAttemptExpired)
}
