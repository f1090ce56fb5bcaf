package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/integrity"
	"github.com/verifai/proctor-backend/internal/model"
)

// memStore is an in-memory ViolationStore double. failures > 0 makes the
// next that many Append calls fail, to exercise the retry path.
type memStore struct {
	records  []model.Violation
	failures int
	appends  int
	clock    time.Time
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (s *memStore) Append(_ context.Context, v *model.Violation) error {
	s.appends++
	if s.failures > 0 {
		s.failures--
		return errors.New("connection refused")
	}
	s.clock = s.clock.Add(time.Second)
	v.ID = len(s.records) + 1
	v.DetectedAt = s.clock
	s.records = append(s.records, *v)
	return nil
}

func (s *memStore) ListByStudent(_ context.Context, studentID, limit, offset int) ([]model.Violation, int, error) {
	var out []model.Violation
	for _, v := range s.records {
		if v.StudentID == studentID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	return page(out, limit, offset), len(out), nil
}

func (s *memStore) ListAll(_ context.Context, limit, offset int) ([]model.Violation, int, error) {
	out := append([]model.Violation(nil), s.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	return page(out, limit, offset), len(out), nil
}

func page(vs []model.Violation, limit, offset int) []model.Violation {
	if offset >= len(vs) {
		return nil
	}
	end := offset + limit
	if end > len(vs) {
		end = len(vs)
	}
	return vs[offset:end]
}

// spyGrader records whether grading was invoked.
type spyGrader struct {
	called bool
	score  int
}

func (g *spyGrader) Score(context.Context, *model.Submission) (int, error) {
	g.called = true
	return g.score, nil
}

// nopPublisher drops feed events.
type nopPublisher struct{}

func (nopPublisher) PublishViolation(context.Context, model.Violation) error { return nil }

func newTestService(store ViolationStore, grader GradingService) *ExamService {
	pipeline := integrity.NewPipeline(integrity.Config{
		TrapWord:              "Cyberdyne",
		SpeedThresholdSeconds: 60,
	}, zerolog.Nop())
	return NewExamService(pipeline, store, grader, nopPublisher{}, zerolog.Nop())
}

func submission() *model.Submission {
	return &model.Submission{
		StudentID:        7,
		ExamID:           "exam-101",
		QuestionID:       "q3",
		AnswerText:       "An honest essay about networks.",
		TimeTakenSeconds: 240,
	}
}

func TestSubmitExamPassed(t *testing.T) {
	store := newMemStore()
	grader := &spyGrader{score: 85}
	svc := newTestService(store, grader)

	res, err := svc.SubmitExam(context.Background(), submission())
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}

	if res.Status != model.StatusPassed {
		t.Errorf("status = %s, want PASSED", res.Status)
	}
	if !grader.called {
		t.Error("grading service should be called for a passed submission")
	}
	if res.Score == nil || *res.Score != 85 {
		t.Errorf("score = %v, want 85", res.Score)
	}
	if len(store.records) != 0 {
		t.Errorf("stored %d violations, want 0", len(store.records))
	}
}

func TestSubmitExamFlaggedPersistsViolations(t *testing.T) {
	store := newMemStore()
	grader := &spyGrader{score: 85}
	svc := newTestService(store, grader)

	sub := submission()
	sub.HoneypotValue = "555-1234"
	sub.AnswerText = "Cyberdyne says hi"

	res, err := svc.SubmitExam(context.Background(), sub)
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}

	if res.Status != model.StatusFlagged {
		t.Errorf("status = %s, want FLAGGED", res.Status)
	}
	if res.Score == nil || *res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
	if grader.called {
		t.Error("grading service must not run for a flagged submission")
	}
	if len(store.records) != 2 {
		t.Fatalf("stored %d violations, want 2", len(store.records))
	}
	for _, v := range store.records {
		if v.ID == 0 || v.DetectedAt.IsZero() {
			t.Errorf("stored violation missing server-assigned fields: %+v", v)
		}
	}
}

func TestSubmitExamReviewRequired(t *testing.T) {
	store := newMemStore()
	grader := &spyGrader{score: 85}
	svc := newTestService(store, grader)

	sub := submission()
	sub.TimeTakenSeconds = 45

	res, err := svc.SubmitExam(context.Background(), sub)
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}

	if res.Status != model.StatusReviewRequired {
		t.Errorf("status = %s, want REVIEW_REQUIRED", res.Status)
	}
	if res.Score != nil {
		t.Errorf("score = %d, want unset pending manual audit", *res.Score)
	}
	if grader.called {
		t.Error("grading must wait for the manual audit")
	}
	if len(store.records) != 1 {
		t.Errorf("stored %d violations, want 1", len(store.records))
	}
}

func TestSubmitExamRetriesFailedAppend(t *testing.T) {
	store := newMemStore()
	store.failures = 1
	svc := newTestService(store, &spyGrader{})

	sub := submission()
	sub.HoneypotValue = "bot"

	if _, err := svc.SubmitExam(context.Background(), sub); err != nil {
		t.Fatalf("SubmitExam should survive one transient failure: %v", err)
	}
	if store.appends != 2 {
		t.Errorf("appends = %d, want 2 (initial + retry)", store.appends)
	}
	if len(store.records) != 1 {
		t.Errorf("stored %d violations, want 1", len(store.records))
	}
}

func TestSubmitExamSurfacesPersistenceFailure(t *testing.T) {
	store := newMemStore()
	store.failures = 2 // initial attempt and the retry both fail
	svc := newTestService(store, &spyGrader{})

	sub := submission()
	sub.HoneypotValue = "bot"

	_, err := svc.SubmitExam(context.Background(), sub)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

func TestViolationRoundTrip(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, &spyGrader{})
	ctx := context.Background()

	for _, answer := range []string{"Cyberdyne one", "Cyberdyne two"} {
		sub := submission()
		sub.AnswerText = answer
		if _, err := svc.SubmitExam(ctx, sub); err != nil {
			t.Fatalf("SubmitExam: %v", err)
		}
	}

	got, total, err := svc.ListStudentViolations(ctx, 7, 10, 0)
	if err != nil {
		t.Fatalf("ListStudentViolations: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("got %d/%d violations, want 2/2", len(got), total)
	}
	if got[0].ViolationType != model.ViolationAIPlagiarism {
		t.Errorf("type = %s, want AI_PLAGIARISM", got[0].ViolationType)
	}
	if got[0].EvidenceScore != 0.99 {
		t.Errorf("evidence = %v, want 0.99", got[0].EvidenceScore)
	}
	// Newest first, timestamps monotonically non-decreasing in append order.
	if got[0].DetectedAt.Before(got[1].DetectedAt) {
		t.Errorf("listing not ordered by detected_at descending")
	}
}
