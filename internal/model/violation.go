package model

import "time"

// ViolationType classifies one detected integrity issue.
type ViolationType string

const (
	// Produced by the evaluation pipeline.
	ViolationBotDetected      ViolationType = "BOT_DETECTED"
	ViolationAIPlagiarism     ViolationType = "AI_PLAGIARISM"
	ViolationSuspiciouslyFast ViolationType = "SUSPICIOUSLY_FAST"
	ViolationWatermarkLeak    ViolationType = "WATERMARK_LEAK"

	// Reported by the bouncer service during a live proctoring session.
	ViolationRhythmMismatch ViolationType = "RHYTHM_MISMATCH"
	ViolationTabSwitch      ViolationType = "TAB_SWITCH"
)

// Valid reports whether t is a known violation type.
func (t ViolationType) Valid() bool {
	switch t {
	case ViolationBotDetected, ViolationAIPlagiarism, ViolationSuspiciouslyFast,
		ViolationWatermarkLeak, ViolationRhythmMismatch, ViolationTabSwitch:
		return true
	}
	return false
}

// Violation is an immutable, timestamped fact documenting one detected
// integrity issue for one student. Records are append-only: once stored
// they are never mutated or deleted (audit-log semantics).
type Violation struct {
	ID            int           `json:"id"`
	StudentID     int           `json:"student_id"`
	ExamID        string        `json:"exam_id,omitempty"`
	ViolationType ViolationType `json:"violation_type"`
	// EvidenceScore is the detection confidence in [0,1]. Advisory
	// detectors that emit a boolean signal leave it at 0.
	EvidenceScore float64 `json:"evidence_score"`
	Detail        string  `json:"detail"`
	// DetectedAt is assigned at persistence time (by the database for
	// pipeline detections, from the observation timestamp for bouncer
	// reports), never supplied by an exam client.
	DetectedAt time.Time `json:"detected_at"`
}
