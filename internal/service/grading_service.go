package service

import (
	"context"

	"github.com/verifai/proctor-backend/internal/model"
)

// GradingService scores a submission that passed all integrity checks.
// Grading is an external collaborator: this backend only defines the
// boundary and ships a static placeholder implementation.
type GradingService interface {
	Score(ctx context.Context, sub *model.Submission) (int, error)
}

// StaticGradingService returns a fixed score for every submission until
// a real grading engine is wired in.
type StaticGradingService struct {
	FixedScore int
}

// NewStaticGradingService creates the placeholder grader.
func NewStaticGradingService() *StaticGradingService {
	return &StaticGradingService{FixedScore: 85}
}

func (g *StaticGradingService) Score(_ context.Context, _ *model.Submission) (int, error) {
	return g.FixedScore, nil
}
