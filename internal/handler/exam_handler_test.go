package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/integrity"
	"github.com/verifai/proctor-backend/internal/middleware"
	"github.com/verifai/proctor-backend/internal/model"
	"github.com/verifai/proctor-backend/internal/service"
	"github.com/verifai/proctor-backend/internal/validator"
)

const testHoneypotField = "phone_extension_secondary"

type stubStore struct {
	records []model.Violation
}

func (s *stubStore) Append(_ context.Context, v *model.Violation) error {
	v.ID = len(s.records) + 1
	s.records = append(s.records, *v)
	return nil
}

func (s *stubStore) ListByStudent(context.Context, int, int, int) ([]model.Violation, int, error) {
	return s.records, len(s.records), nil
}

func (s *stubStore) ListAll(context.Context, int, int) ([]model.Violation, int, error) {
	return s.records, len(s.records), nil
}

type stubGrader struct{}

func (stubGrader) Score(context.Context, *model.Submission) (int, error) { return 85, nil }

type stubPublisher struct{}

func (stubPublisher) PublishViolation(context.Context, model.Violation) error { return nil }

func setupRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	pipeline := integrity.NewPipeline(integrity.Config{
		TrapWord:              "Cyberdyne",
		SpeedThresholdSeconds: 60,
	}, zerolog.Nop())
	examService := service.NewExamService(pipeline, store, stubGrader{}, stubPublisher{}, zerolog.Nop())
	h := NewExamHandler(examService, nil, testHoneypotField)

	r := gin.New()
	r.POST("/api/v1/exam/submit", func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, &service.Claims{TokenType: service.TokenTypeStudent, UserID: 42})
		c.Next()
	}, h.SubmitExam)
	r.GET("/api/v1/exam/:exam_id/details", h.GetExamDetails)
	return r
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func doSubmit(t *testing.T, r *gin.Engine, body map[string]interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/submit", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response: %v (body: %s)", err, w.Body.String())
	}
	return w, env
}

func cleanBody() map[string]interface{} {
	return map[string]interface{}{
		"exam_id":            "exam-101",
		"question_id":        "q1",
		"answer_text":        "A straightforward honest answer.",
		"time_taken_seconds": 300,
	}
}

func TestSubmitEndpointPassed(t *testing.T) {
	store := &stubStore{}
	r := setupRouter(store)

	w, env := doSubmit(t, r, cleanBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result model.ExamResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.Status != model.StatusPassed {
		t.Errorf("status = %s, want PASSED", result.Status)
	}
	if result.StudentID != 42 {
		t.Errorf("student_id = %d, want 42 (from JWT, not body)", result.StudentID)
	}
	if result.Score == nil || *result.Score != 85 {
		t.Errorf("score = %v, want 85", result.Score)
	}
}

func TestSubmitEndpointHoneypotIsNormal200(t *testing.T) {
	store := &stubStore{}
	r := setupRouter(store)

	body := cleanBody()
	body[testHoneypotField] = "555-0100"

	w, env := doSubmit(t, r, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (a detection is not an HTTP error)", w.Code)
	}

	var result model.ExamResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.Status != model.StatusFlagged {
		t.Errorf("status = %s, want FLAGGED", result.Status)
	}
	if len(store.records) != 1 {
		t.Fatalf("stored %d violations, want 1", len(store.records))
	}
	if store.records[0].ViolationType != model.ViolationBotDetected {
		t.Errorf("type = %s, want BOT_DETECTED", store.records[0].ViolationType)
	}
}

func TestSubmitEndpointNonStringHoneypotCountsAsFilled(t *testing.T) {
	store := &stubStore{}
	r := setupRouter(store)

	body := cleanBody()
	body[testHoneypotField] = 12345

	_, env := doSubmit(t, r, body)
	var result model.ExamResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result.Status != model.StatusFlagged {
		t.Errorf("status = %s, want FLAGGED", result.Status)
	}
}

func TestSubmitEndpointValidation(t *testing.T) {
	store := &stubStore{}
	r := setupRouter(store)

	body := cleanBody()
	delete(body, "answer_text")

	w, env := doSubmit(t, r, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
	if _, ok := env.Error.Fields["answer_text"]; !ok {
		t.Errorf("fields = %v, want answer_text entry", env.Error.Fields)
	}
}

func TestSubmitEndpointMalformedJSON(t *testing.T) {
	store := &stubStore{}
	r := setupRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam/submit", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestExamDetailsEndpoint(t *testing.T) {
	r := setupRouter(&stubStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/exam/exam-101/details", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	var details map[string]interface{}
	if err := json.Unmarshal(env.Data, &details); err != nil {
		t.Fatalf("unmarshal details: %v", err)
	}
	if details["exam_id"] != "exam-101" {
		t.Errorf("exam_id = %v, want exam-101", details["exam_id"])
	}
}
