package model

import "encoding/json"

// ExamStatus is the final disposition of an evaluated submission.
type ExamStatus string

const (
	StatusPassed         ExamStatus = "PASSED"
	StatusReviewRequired ExamStatus = "REVIEW_REQUIRED"
	StatusFlagged        ExamStatus = "FLAGGED"
)

// Rank orders dispositions by severity so the pipeline can take a
// maximum: FLAGGED > REVIEW_REQUIRED > PASSED. FLAGGED is a ceiling —
// multiple high-confidence detections never escalate beyond it.
func (s ExamStatus) Rank() int {
	switch s {
	case StatusFlagged:
		return 2
	case StatusReviewRequired:
		return 1
	default:
		return 0
	}
}

// Submission is one student's answer to one exam question, immutable once
// received. It lives only for the duration of pipeline evaluation.
type Submission struct {
	StudentID        int
	ExamID           string
	QuestionID       string
	AnswerText       string
	TimeTakenSeconds int
	// HoneypotValue is the content of the CSS-hidden form field. Humans
	// never see the field, so any non-whitespace value means an automated
	// form filler submitted on the student's behalf.
	HoneypotValue string
	// KeystrokeFingerprint holds inter-keystroke flight times in
	// milliseconds. Accepted and carried for a future biometric detector;
	// nothing scores it yet.
	KeystrokeFingerprint []float64
}

// SubmitExamRequest is the wire payload of POST /exam/submit. The student
// identity comes from the JWT, not from the body. The honeypot value is
// bound separately by DecodeSubmitRequest so its decoy wire name never
// appears in a struct tag (and therefore never in generated API docs).
type SubmitExamRequest struct {
	ExamID               string    `json:"exam_id" binding:"required,min=1,max=64"`
	QuestionID           string    `json:"question_id" binding:"required,min=1,max=64"`
	AnswerText           string    `json:"answer_text" binding:"required,min=1"`
	TimeTakenSeconds     int       `json:"time_taken_seconds" binding:"min=0"`
	KeystrokeFingerprint []float64 `json:"keystroke_fingerprint" binding:"omitempty,dive,min=0"`

	honeypotValue string
}

// DecodeSubmitRequest parses a raw submit payload and resolves the decoy
// honeypot field. This is the single place where the wire name (taken
// from config) maps onto the internal field.
func DecodeSubmitRequest(raw []byte, honeypotField string) (*SubmitExamRequest, error) {
	var req SubmitExamRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if v, ok := wire[honeypotField]; ok {
		// Decoy field present. Non-string values count as filled too —
		// a bot that sends a number still outed itself.
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = string(v)
		}
		req.honeypotValue = s
	}

	return &req, nil
}

// Submission builds the immutable evaluation input for an authenticated
// student.
func (r *SubmitExamRequest) Submission(studentID int) *Submission {
	return &Submission{
		StudentID:            studentID,
		ExamID:               r.ExamID,
		QuestionID:           r.QuestionID,
		AnswerText:           r.AnswerText,
		TimeTakenSeconds:     r.TimeTakenSeconds,
		HoneypotValue:        r.honeypotValue,
		KeystrokeFingerprint: r.KeystrokeFingerprint,
	}
}

// ExamResult is the response payload of POST /exam/submit. A detected
// violation is a normal 200 response carrying status FLAGGED, not an
// error. Score is null while a REVIEW_REQUIRED submission awaits manual
// audit.
type ExamResult struct {
	StudentID       int        `json:"student_id"`
	ExamID          string     `json:"exam_id"`
	Status          ExamStatus `json:"status"`
	Score           *int       `json:"score"`
	SecurityRemarks string     `json:"security_remarks,omitempty"`
}

// ReportEventRequest is the payload of the internal endpoint the bouncer
// uses to report violations observed during a live session.
type ReportEventRequest struct {
	StudentID     int           `json:"student_id" binding:"required"`
	ExamID        string        `json:"exam_id" binding:"omitempty,max=64"`
	ViolationType ViolationType `json:"violation_type" binding:"required"`
	EvidenceScore float64       `json:"evidence_score" binding:"min=0,max=1"`
	Detail        string        `json:"detail" binding:"required"`
	Timestamp     int64         `json:"timestamp" binding:"required"`
}
