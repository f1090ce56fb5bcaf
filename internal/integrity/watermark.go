package integrity

import (
	"strings"

	"github.com/verifai/proctor-backend/internal/model"
)

// zeroWidthMarkers are the invisible runes used to watermark exam prompt
// text. Their presence in an answer means the student pasted watermarked
// prompt material verbatim.
const zeroWidthMarkers = "\u200B\u200C\u200D\u2060\uFEFF"

// WatermarkDetector fires when zero-width marker characters appear in
// the answer text. Only presence is checked; decoding an embedded
// payload (e.g. recovering the leaking student's ID from the bit
// pattern) is a future extension behind the same Detector capability.
type WatermarkDetector struct{}

func (WatermarkDetector) Name() string { return "watermark" }

func (WatermarkDetector) Disposition() model.ExamStatus { return model.StatusFlagged }

func (WatermarkDetector) Evaluate(sub *model.Submission) *model.Violation {
	if !strings.ContainsAny(sub.AnswerText, zeroWidthMarkers) {
		return nil
	}
	return &model.Violation{
		StudentID:     sub.StudentID,
		ExamID:        sub.ExamID,
		ViolationType: model.ViolationWatermarkLeak,
		EvidenceScore: 1.0,
		Detail:        "Zero-width watermark characters present in answer text",
	}
}
