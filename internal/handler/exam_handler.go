package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verifai/proctor-backend/internal/middleware"
	"github.com/verifai/proctor-backend/internal/model"
	"github.com/verifai/proctor-backend/internal/repository"
	"github.com/verifai/proctor-backend/internal/response"
	"github.com/verifai/proctor-backend/internal/service"
	"github.com/verifai/proctor-backend/internal/validator"
)

// ExamHandler handles submission and the internal endpoints the bouncer
// calls during live proctoring sessions.
type ExamHandler struct {
	examService    *service.ExamService
	proctorService *service.ProctorService
	honeypotField  string
}

// NewExamHandler creates a new ExamHandler. honeypotField is the decoy
// wire name of the hidden form field, taken from config so it never
// appears in struct tags or generated docs.
func NewExamHandler(examService *service.ExamService, proctorService *service.ProctorService, honeypotField string) *ExamHandler {
	return &ExamHandler{
		examService:    examService,
		proctorService: proctorService,
		honeypotField:  honeypotField,
	}
}

// SubmitExam godoc
// POST /api/v1/exam/submit
// Runs the integrity pipeline over one answer. A detected violation is a
// normal 200 carrying status FLAGGED or REVIEW_REQUIRED; 400 is reserved
// for malformed input.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	// The body is decoded manually so the honeypot decoy field can be
	// resolved by its configured wire name.
	raw, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	req, err := model.DecodeSubmitRequest(raw, h.honeypotField)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.examService.SubmitExam(c.Request.Context(), req.Submission(claims.UserID))
	if err != nil {
		if errors.Is(err, service.ErrPersistence) {
			response.Fail(c, http.StatusInternalServerError, response.ErrPersistenceFailed)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetExamDetails godoc
// GET /api/v1/exam/:exam_id/details
// Returns the exam configuration handed to the client before a session.
func (h *ExamHandler) GetExamDetails(c *gin.Context) {
	examID := c.Param("exam_id")
	if examID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam_id":         examID,
		"total_questions": 10,
		"security_level":  "High - Behavioral Biometrics Enabled",
	})
}

// UpdateBaseline godoc
// POST /api/v1/exam/internal/update-baseline
// The bouncer reports a student's average keystroke flight time when a
// proctoring session ends.
func (h *ExamHandler) UpdateBaseline(c *gin.Context) {
	var req model.UpdateBaselineRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.proctorService.UpdateBaseline(c.Request.Context(), req.UserID, req.NewFlightTime); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "Baseline Updated"})
}

// ReportEvent godoc
// POST /api/v1/exam/internal/events
// The bouncer reports a violation it observed in real time. The event is
// queued for the violation worker; 202 acknowledges the enqueue only.
func (h *ExamHandler) ReportEvent(c *gin.Context) {
	var req model.ReportEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.proctorService.ReportEvent(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrUnknownViolationType) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownViolationType)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"status": "queued"})
}
