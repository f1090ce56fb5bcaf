package integrity

import (
	"strings"
	"testing"

	"github.com/verifai/proctor-backend/internal/model"
)

func cleanSubmission() *model.Submission {
	return &model.Submission{
		StudentID:        42,
		ExamID:           "exam-001",
		QuestionID:       "q1",
		AnswerText:       "The mitochondria is the powerhouse of the cell.",
		TimeTakenSeconds: 300,
	}
}

func TestHoneypotDetector(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantFire bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \t\n", false},
		{"filled", "555-1234", true},
		{"single char", "x", true},
	}

	d := HoneypotDetector{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := cleanSubmission()
			sub.HoneypotValue = tt.value

			v := d.Evaluate(sub)
			if (v != nil) != tt.wantFire {
				t.Fatalf("fired = %v, want %v", v != nil, tt.wantFire)
			}
			if v == nil {
				return
			}
			if v.ViolationType != model.ViolationBotDetected {
				t.Errorf("type = %s, want BOT_DETECTED", v.ViolationType)
			}
			if v.EvidenceScore != 1.0 {
				t.Errorf("evidence = %v, want 1.0", v.EvidenceScore)
			}
			if v.StudentID != sub.StudentID {
				t.Errorf("student_id = %d, want %d", v.StudentID, sub.StudentID)
			}
		})
	}
}

func TestTrapWordDetector(t *testing.T) {
	tests := []struct {
		name     string
		trapWord string
		answer   string
		wantFire bool
	}{
		{"exact match", "Cyberdyne", "The answer is Cyberdyne systems", true},
		{"case insensitive", "Cyberdyne", "the answer is CYBERDYNE systems", true},
		{"substring inside word", "Cyberdyne", "cyberdynesystems built it", true},
		{"no match", "Cyberdyne", "A perfectly normal answer", false},
		{"empty trap word disables", "", "anything at all", false},
		{"empty answer", "Cyberdyne", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := TrapWordDetector{TrapWord: tt.trapWord}
			sub := cleanSubmission()
			sub.AnswerText = tt.answer

			v := d.Evaluate(sub)
			if (v != nil) != tt.wantFire {
				t.Fatalf("fired = %v, want %v", v != nil, tt.wantFire)
			}
			if v == nil {
				return
			}
			if v.ViolationType != model.ViolationAIPlagiarism {
				t.Errorf("type = %s, want AI_PLAGIARISM", v.ViolationType)
			}
			if v.EvidenceScore != 0.99 {
				t.Errorf("evidence = %v, want 0.99", v.EvidenceScore)
			}
			if !strings.Contains(v.Detail, tt.trapWord) {
				t.Errorf("detail %q should name the trap phrase", v.Detail)
			}
		})
	}
}

func TestSpeedDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		taken     int
		wantFire  bool
	}{
		{"below threshold", 60, 45, true},
		{"zero seconds", 60, 0, true},
		{"at threshold", 60, 60, false},
		{"above threshold", 60, 300, false},
		{"custom threshold", 120, 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := SpeedDetector{ThresholdSeconds: tt.threshold}
			sub := cleanSubmission()
			sub.TimeTakenSeconds = tt.taken

			v := d.Evaluate(sub)
			if (v != nil) != tt.wantFire {
				t.Fatalf("fired = %v, want %v", v != nil, tt.wantFire)
			}
			if v == nil {
				return
			}
			if v.ViolationType != model.ViolationSuspiciouslyFast {
				t.Errorf("type = %s, want SUSPICIOUSLY_FAST", v.ViolationType)
			}
			if v.EvidenceScore != 0 {
				t.Errorf("advisory detector must not assign evidence, got %v", v.EvidenceScore)
			}
			if d.Disposition() != model.StatusReviewRequired {
				t.Errorf("disposition = %s, want REVIEW_REQUIRED", d.Disposition())
			}
		})
	}
}

func TestWatermarkDetector(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		wantFire bool
	}{
		{"zero width space", "stolen\u200Btext", true},
		{"zero width joiner", "stolen\u200Dtext", true},
		{"bom", "\uFEFFpasted from screen", true},
		{"clean text", "an honest answer", false},
		{"regular spaces", "spaces are fine", false},
	}

	d := WatermarkDetector{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := cleanSubmission()
			sub.AnswerText = tt.answer

			v := d.Evaluate(sub)
			if (v != nil) != tt.wantFire {
				t.Fatalf("fired = %v, want %v", v != nil, tt.wantFire)
			}
			if v != nil && v.ViolationType != model.ViolationWatermarkLeak {
				t.Errorf("type = %s, want WATERMARK_LEAK", v.ViolationType)
			}
		})
	}
}
