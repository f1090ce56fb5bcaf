package integrity

import (
	"strings"

	"github.com/verifai/proctor-backend/internal/model"
)

// HoneypotDetector fires when the CSS-hidden decoy form field arrives
// with content. Humans cannot see the field, so anything non-whitespace
// in it can only come from an automated form filler. The false-positive
// rate is treated as negligible, hence the maximal evidence score.
type HoneypotDetector struct{}

func (HoneypotDetector) Name() string { return "honeypot" }

func (HoneypotDetector) Disposition() model.ExamStatus { return model.StatusFlagged }

func (HoneypotDetector) Evaluate(sub *model.Submission) *model.Violation {
	if strings.TrimSpace(sub.HoneypotValue) == "" {
		return nil
	}
	return &model.Violation{
		StudentID:     sub.StudentID,
		ExamID:        sub.ExamID,
		ViolationType: model.ViolationBotDetected,
		EvidenceScore: 1.0,
		Detail:        "Honeypot field filled: automated submission tool detected",
	}
}
