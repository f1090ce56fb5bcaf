package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/config"
	"github.com/verifai/proctor-backend/internal/integrity"
	"github.com/verifai/proctor-backend/internal/model"
	"github.com/verifai/proctor-backend/internal/repository"
)

// ErrPersistence marks a violation append that failed even after retry.
// Callers must surface it (5xx) — flagged evidence is audit material and
// is never silently dropped.
var ErrPersistence = errors.New("violation store unavailable")

// ViolationStore is the persistence boundary for integrity violations.
// Implemented by repository.ViolationRepository; tests use an in-memory
// double.
type ViolationStore interface {
	Append(ctx context.Context, v *model.Violation) error
	ListByStudent(ctx context.Context, studentID, limit, offset int) ([]model.Violation, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.Violation, int, error)
}

// ViolationPublisher fans freshly appended violations out to the live
// admin monitor. Publishing is best effort; failures never block a
// submission.
type ViolationPublisher interface {
	PublishViolation(ctx context.Context, v model.Violation) error
}

// RedisViolationPublisher publishes violations on the Redis PubSub feed
// channel consumed by the admin WebSocket stream.
type RedisViolationPublisher struct {
	rdb *redis.Client
}

func NewRedisViolationPublisher(rdb *redis.Client) *RedisViolationPublisher {
	return &RedisViolationPublisher{rdb: rdb}
}

func (p *RedisViolationPublisher) PublishViolation(ctx context.Context, v model.Violation) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, config.CacheKey.ViolationFeedChannel(), payload).Err()
}

// ExamService runs the integrity pipeline over incoming submissions and
// owns the persistence of whatever the pipeline detects. The pipeline
// itself is pure; all I/O happens here.
type ExamService struct {
	pipeline  *integrity.Pipeline
	store     ViolationStore
	grader    GradingService
	publisher ViolationPublisher
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	pipeline *integrity.Pipeline,
	store ViolationStore,
	grader GradingService,
	publisher ViolationPublisher,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		pipeline:  pipeline,
		store:     store,
		grader:    grader,
		publisher: publisher,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// SubmitExam evaluates one submission and persists every violation the
// pipeline produced. Each record is an independent atomic write; a write
// that fails after one retry aborts the whole submission with
// ErrPersistence.
func (s *ExamService) SubmitExam(ctx context.Context, sub *model.Submission) (*model.ExamResult, error) {
	result := s.pipeline.Evaluate(sub)

	if len(result.Violations) > 0 {
		s.log.Warn().
			Int("student_id", sub.StudentID).
			Str("exam_id", sub.ExamID).
			Str("status", string(result.Status)).
			Int("violations", len(result.Violations)).
			Msg("Integrity violations detected")
	}

	for i := range result.Violations {
		v := &result.Violations[i]
		if err := s.appendWithRetry(ctx, v); err != nil {
			return nil, err
		}
		if err := s.publisher.PublishViolation(ctx, *v); err != nil {
			s.log.Warn().Err(err).Int("violation_id", v.ID).Msg("Live feed publish failed")
		}
	}

	score := result.Score
	if result.Status == model.StatusPassed {
		graded, err := s.grader.Score(ctx, sub)
		if err != nil {
			return nil, fmt.Errorf("grade submission: %w", err)
		}
		score = &graded
	}

	return &model.ExamResult{
		StudentID:       sub.StudentID,
		ExamID:          sub.ExamID,
		Status:          result.Status,
		Score:           score,
		SecurityRemarks: result.SecurityRemarks,
	}, nil
}

// appendWithRetry performs the single retry the audit contract requires.
// Data errors (unknown student) are not retried — a second attempt
// cannot succeed.
func (s *ExamService) appendWithRetry(ctx context.Context, v *model.Violation) error {
	err := s.store.Append(ctx, v)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrStudentUnknown) {
		return fmt.Errorf("%w: %s", ErrPersistence, err)
	}

	s.log.Warn().Err(err).
		Int("student_id", v.StudentID).
		Str("type", string(v.ViolationType)).
		Msg("Violation append failed, retrying once")

	if err := s.store.Append(ctx, v); err != nil {
		s.log.Error().Err(err).
			Int("student_id", v.StudentID).
			Str("type", string(v.ViolationType)).
			Msg("Violation append failed after retry")
		return fmt.Errorf("%w: %s", ErrPersistence, err)
	}
	return nil
}

// ListViolations returns the admin dashboard view, newest first.
func (s *ExamService) ListViolations(ctx context.Context, limit, offset int) ([]model.Violation, int, error) {
	return s.store.ListAll(ctx, limit, offset)
}

// ListStudentViolations returns one student's record, newest first.
func (s *ExamService) ListStudentViolations(ctx context.Context, studentID, limit, offset int) ([]model.Violation, int, error) {
	return s.store.ListByStudent(ctx, studentID, limit, offset)
}
