package integrity

import (
	"fmt"
	"strings"

	"github.com/verifai/proctor-backend/internal/model"
)

// TrapWordDetector fires when the configured trigger phrase appears in
// the answer text. The phrase is embedded invisibly in the exam prompt
// shown to the student; a legitimate answer never contains it, so its
// presence implies the prompt was piped through an external generation
// tool that echoed it back.
type TrapWordDetector struct {
	// TrapWord is the configured trigger phrase. Empty disables the
	// detector.
	TrapWord string
}

func (TrapWordDetector) Name() string { return "trap_word" }

func (TrapWordDetector) Disposition() model.ExamStatus { return model.StatusFlagged }

func (d TrapWordDetector) Evaluate(sub *model.Submission) *model.Violation {
	if d.TrapWord == "" {
		return nil
	}
	// Plain lower-case folding on both sides. No locale-specific folding
	// required.
	if !strings.Contains(strings.ToLower(sub.AnswerText), strings.ToLower(d.TrapWord)) {
		return nil
	}
	return &model.Violation{
		StudentID:     sub.StudentID,
		ExamID:        sub.ExamID,
		ViolationType: model.ViolationAIPlagiarism,
		EvidenceScore: 0.99,
		Detail:        fmt.Sprintf("AI-assisted cheating detected: trap phrase %q found in answer", d.TrapWord),
	}
}
