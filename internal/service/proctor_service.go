package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/verifai/proctor-backend/internal/config"
	"github.com/verifai/proctor-backend/internal/model"
	"github.com/verifai/proctor-backend/internal/repository"
)

// ErrUnknownViolationType rejects bouncer reports with a type this
// backend does not track.
var ErrUnknownViolationType = errors.New("unknown violation type")

// ProctorService serves the bouncer, the separate edge service that
// watches live exam sessions. The bouncer reports two things back:
// keystroke baselines when a session ends, and violations it observed
// in real time. Reported violations go through the Redis queue and the
// violation worker rather than a direct insert, so a database hiccup
// never stalls the bouncer's hot path.
type ProctorService struct {
	users *repository.UserRepository
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewProctorService creates a new ProctorService.
func NewProctorService(users *repository.UserRepository, rdb *redis.Client, log zerolog.Logger) *ProctorService {
	return &ProctorService{
		users: users,
		rdb:   rdb,
		log:   log.With().Str("component", "proctor_service").Logger(),
	}
}

// UpdateBaseline stores a student's average inter-keystroke flight time.
// The value is kept for a future biometric detector; nothing scores it.
func (s *ProctorService) UpdateBaseline(ctx context.Context, userID int, flightTimeMs float64) error {
	if err := s.users.UpdateTypingBaseline(ctx, userID, flightTimeMs); err != nil {
		return fmt.Errorf("update typing baseline: %w", err)
	}
	s.log.Info().
		Int("user_id", userID).
		Float64("flight_time_ms", flightTimeMs).
		Msg("Typing baseline updated")
	return nil
}

// ReportEvent enqueues a bouncer-observed violation for asynchronous
// persistence by the violation worker.
func (s *ProctorService) ReportEvent(ctx context.Context, req *model.ReportEventRequest) error {
	if !req.ViolationType.Valid() {
		return ErrUnknownViolationType
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue event: %w", err)
	}
	return nil
}
