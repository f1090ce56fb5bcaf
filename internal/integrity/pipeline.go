package integrity

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/model"
)

// remarkSeparator joins triggered detectors' details, in detection order.
const remarkSeparator = "; "

// cleanRemark is returned when no detector fired.
const cleanRemark = "Identity and integrity verified"

// Config holds the tunables the detectors depend on. It is injected at
// construction time so tests can run the pipeline with different
// thresholds; nothing here reads ambient global state.
type Config struct {
	// TrapWord is the trigger phrase embedded in exam prompts.
	TrapWord string
	// SpeedThresholdSeconds is the minimum plausible elapsed time.
	SpeedThresholdSeconds int
}

// Result aggregates one evaluation. Violations are pending: the caller
// owns persisting them; the pipeline itself performs no I/O.
type Result struct {
	Violations []model.Violation
	Status     model.ExamStatus
	// Score is 0 when flagged, nil otherwise. A PASSED submission gets
	// its score from the grading service, a REVIEW_REQUIRED one waits
	// for manual audit.
	Score           *int
	SecurityRemarks string
}

// Pipeline runs every registered detector over a submission in a fixed
// order and decides the final disposition. Evaluation is synchronous,
// stateless and request-scoped: concurrent calls need no coordination.
type Pipeline struct {
	detectors []Detector
	log       zerolog.Logger
}

// NewPipeline registers the built-in detectors. The order is fixed for
// deterministic remarks and logs; correctness does not depend on it
// since detectors are independent.
func NewPipeline(cfg Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		detectors: []Detector{
			HoneypotDetector{},
			TrapWordDetector{TrapWord: cfg.TrapWord},
			SpeedDetector{ThresholdSeconds: cfg.SpeedThresholdSeconds},
			WatermarkDetector{},
		},
		log: log.With().Str("component", "integrity_pipeline").Logger(),
	}
}

// Evaluate runs all detectors and aggregates their findings. The final
// status is the maximum disposition demanded by any detector that fired:
// FLAGGED beats REVIEW_REQUIRED beats PASSED, and FLAGGED is a ceiling —
// several high-confidence detections do not escalate it further.
func (p *Pipeline) Evaluate(sub *model.Submission) *Result {
	result := &Result{Status: model.StatusPassed}
	var remarks []string

	for _, d := range p.detectors {
		v := p.runSafe(d, sub)
		if v == nil {
			continue
		}
		result.Violations = append(result.Violations, *v)
		remarks = append(remarks, v.Detail)
		if d.Disposition().Rank() > result.Status.Rank() {
			result.Status = d.Disposition()
		}
	}

	if result.Status == model.StatusFlagged {
		zero := 0
		result.Score = &zero
	}

	if len(remarks) > 0 {
		result.SecurityRemarks = strings.Join(remarks, remarkSeparator)
	} else {
		result.SecurityRemarks = cleanRemark
	}

	return result
}

// runSafe isolates detector faults. A panicking detector is logged and
// treated as "did not fire" so one malfunctioning check cannot block the
// others from evaluating a legitimate submission.
func (p *Pipeline) runSafe(d Detector, sub *model.Submission) (v *model.Violation) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Str("detector", d.Name()).
				Int("student_id", sub.StudentID).
				Interface("panic", r).
				Msg("Detector panicked, treating as not fired")
			v = nil
		}
	}()
	return d.Evaluate(sub)
}
