package integrity

import (
	"fmt"

	"github.com/verifai/proctor-backend/internal/model"
)

// SpeedDetector fires when the elapsed time is below the configured
// minimum. Unlike the honeypot and trap-word checks it is advisory: it
// demands REVIEW_REQUIRED, never FLAGGED, and carries no evidence score
// because the signal is boolean, not a confidence.
type SpeedDetector struct {
	// ThresholdSeconds is the minimum plausible elapsed time.
	ThresholdSeconds int
}

func (SpeedDetector) Name() string { return "speed" }

func (SpeedDetector) Disposition() model.ExamStatus { return model.StatusReviewRequired }

func (d SpeedDetector) Evaluate(sub *model.Submission) *model.Violation {
	if sub.TimeTakenSeconds >= d.ThresholdSeconds {
		return nil
	}
	return &model.Violation{
		StudentID:     sub.StudentID,
		ExamID:        sub.ExamID,
		ViolationType: model.ViolationSuspiciouslyFast,
		Detail: fmt.Sprintf("Suspiciously fast submission (%ds, minimum %ds); pending manual audit",
			sub.TimeTakenSeconds, d.ThresholdSeconds),
	}
}
