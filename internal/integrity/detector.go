package integrity

import (
	"github.com/verifai/proctor-backend/internal/model"
)

// Detector is one independent cheating check. Implementations must be
// pure functions of the submission: no hidden state, no I/O, no reading
// another detector's output. That keeps them unit-testable in isolation
// and freely composable by the pipeline.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string
	// Disposition is the status this detector demands when it fires.
	// High-confidence binary signals demand FLAGGED; advisory signals
	// demand only REVIEW_REQUIRED.
	Disposition() model.ExamStatus
	// Evaluate inspects the submission and returns a violation if the
	// check fires, nil otherwise. Detectors are total over a well-formed
	// submission and never return errors.
	Evaluate(sub *model.Submission) *model.Violation
}
