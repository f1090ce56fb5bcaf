package integrity

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/model"
)

func testPipeline() *Pipeline {
	return NewPipeline(Config{
		TrapWord:              "Cyberdyne",
		SpeedThresholdSeconds: 60,
	}, zerolog.Nop())
}

func TestPipelineDispositions(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*model.Submission)
		wantStatus     model.ExamStatus
		wantViolations int
		wantTypes      []model.ViolationType
		wantScoreZero  bool
	}{
		{
			name:       "clean submission passes",
			mutate:     func(s *model.Submission) {},
			wantStatus: model.StatusPassed,
		},
		{
			name: "filled honeypot flags regardless of other fields",
			mutate: func(s *model.Submission) {
				s.HoneypotValue = "555-1234"
			},
			wantStatus:     model.StatusFlagged,
			wantViolations: 1,
			wantTypes:      []model.ViolationType{model.ViolationBotDetected},
			wantScoreZero:  true,
		},
		{
			name: "trap word flags",
			mutate: func(s *model.Submission) {
				s.AnswerText = "The answer is Cyberdyne systems"
			},
			wantStatus:     model.StatusFlagged,
			wantViolations: 1,
			wantTypes:      []model.ViolationType{model.ViolationAIPlagiarism},
			wantScoreZero:  true,
		},
		{
			name: "fast submission alone requires review",
			mutate: func(s *model.Submission) {
				s.TimeTakenSeconds = 45
			},
			wantStatus:     model.StatusReviewRequired,
			wantViolations: 1,
			wantTypes:      []model.ViolationType{model.ViolationSuspiciouslyFast},
		},
		{
			name: "honeypot and trap word record two violations but flagged is a ceiling",
			mutate: func(s *model.Submission) {
				s.HoneypotValue = "bot-filled"
				s.AnswerText = "cyberdyne wrote this"
			},
			wantStatus:     model.StatusFlagged,
			wantViolations: 2,
			wantTypes: []model.ViolationType{
				model.ViolationBotDetected,
				model.ViolationAIPlagiarism,
			},
			wantScoreZero: true,
		},
		{
			name: "flagging detector overrides advisory speed signal",
			mutate: func(s *model.Submission) {
				s.AnswerText = "Cyberdyne again"
				s.TimeTakenSeconds = 10
			},
			wantStatus:     model.StatusFlagged,
			wantViolations: 2,
			wantTypes: []model.ViolationType{
				model.ViolationAIPlagiarism,
				model.ViolationSuspiciouslyFast,
			},
			wantScoreZero: true,
		},
		{
			name: "watermark leak flags",
			mutate: func(s *model.Submission) {
				s.AnswerText = "copied\u200Bverbatim"
			},
			wantStatus:     model.StatusFlagged,
			wantViolations: 1,
			wantTypes:      []model.ViolationType{model.ViolationWatermarkLeak},
			wantScoreZero:  true,
		},
	}

	p := testPipeline()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := cleanSubmission()
			tt.mutate(sub)

			res := p.Evaluate(sub)

			if res.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", res.Status, tt.wantStatus)
			}
			if len(res.Violations) != tt.wantViolations {
				t.Fatalf("violations = %d, want %d", len(res.Violations), tt.wantViolations)
			}
			var gotTypes []model.ViolationType
			for _, v := range res.Violations {
				gotTypes = append(gotTypes, v.ViolationType)
			}
			if tt.wantTypes != nil && !reflect.DeepEqual(gotTypes, tt.wantTypes) {
				t.Errorf("violation types = %v, want %v (detection order)", gotTypes, tt.wantTypes)
			}
			if tt.wantScoreZero {
				if res.Score == nil || *res.Score != 0 {
					t.Errorf("score = %v, want 0", res.Score)
				}
			} else if res.Score != nil {
				t.Errorf("score = %d, want unset", *res.Score)
			}
		})
	}
}

func TestPipelineRemarks(t *testing.T) {
	p := testPipeline()

	t.Run("honeypot remark names the trap", func(t *testing.T) {
		sub := cleanSubmission()
		sub.HoneypotValue = "555-1234"

		res := p.Evaluate(sub)
		if !strings.Contains(res.SecurityRemarks, "Honeypot") {
			t.Errorf("remarks %q should mention the honeypot", res.SecurityRemarks)
		}
	})

	t.Run("multiple remarks joined in detection order", func(t *testing.T) {
		sub := cleanSubmission()
		sub.HoneypotValue = "bot"
		sub.TimeTakenSeconds = 5

		res := p.Evaluate(sub)
		parts := strings.Split(res.SecurityRemarks, "; ")
		if len(parts) != 2 {
			t.Fatalf("remarks = %q, want two parts", res.SecurityRemarks)
		}
		if !strings.Contains(parts[0], "Honeypot") || !strings.Contains(parts[1], "fast") {
			t.Errorf("remark order wrong: %q", res.SecurityRemarks)
		}
	})

	t.Run("clean submission gets verification remark", func(t *testing.T) {
		res := p.Evaluate(cleanSubmission())
		if res.SecurityRemarks != cleanRemark {
			t.Errorf("remarks = %q, want %q", res.SecurityRemarks, cleanRemark)
		}
	})
}

func TestPipelineIsPure(t *testing.T) {
	p := testPipeline()
	sub := cleanSubmission()
	sub.AnswerText = "Cyberdyne"
	sub.TimeTakenSeconds = 12

	first := p.Evaluate(sub)
	second := p.Evaluate(sub)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("evaluating the same submission twice diverged:\n%+v\n%+v", first, second)
	}
}

// panicDetector stands in for a malfunctioning extension detector.
type panicDetector struct{}

func (panicDetector) Name() string                  { return "broken" }
func (panicDetector) Disposition() model.ExamStatus { return model.StatusFlagged }
func (panicDetector) Evaluate(*model.Submission) *model.Violation {
	panic("boom")
}

func TestPipelineSurvivesDetectorPanic(t *testing.T) {
	p := testPipeline()
	p.detectors = append([]Detector{panicDetector{}}, p.detectors...)

	sub := cleanSubmission()
	sub.AnswerText = "Cyberdyne slipped in"

	res := p.Evaluate(sub)

	// The broken detector is treated as not fired; the rest still run
	// and FLAGGED detections still apply.
	if res.Status != model.StatusFlagged {
		t.Errorf("status = %s, want FLAGGED despite panicking detector", res.Status)
	}
	if len(res.Violations) != 1 {
		t.Errorf("violations = %d, want 1", len(res.Violations))
	}
}
