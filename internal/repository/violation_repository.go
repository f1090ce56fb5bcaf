package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/verifai/proctor-backend/internal/model"
)

// ErrStudentUnknown is returned when a violation references a user that
// does not exist (the FK on integrity_violations enforces it).
var ErrStudentUnknown = errors.New("violation references unknown student")

// ViolationRepository persists integrity violations. The table is
// append-only: there are deliberately no update or delete methods.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// Append inserts one violation as a single atomic write and fills in the
// server-assigned id and detected_at timestamp. The timestamp comes from
// the database clock, never from the caller.
func (r *ViolationRepository) Append(ctx context.Context, v *model.Violation) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO integrity_violations (student_id, exam_id, violation_type, evidence_score, detail)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		 RETURNING id, detected_at`,
		v.StudentID, v.ExamID, v.ViolationType, v.EvidenceScore, v.Detail,
	).Scan(&v.ID, &v.DetectedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrStudentUnknown
		}
		return err
	}
	return nil
}

// ListByStudent retrieves a student's violations, newest first.
func (r *ViolationRepository) ListByStudent(ctx context.Context, studentID, limit, offset int) ([]model.Violation, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM integrity_violations WHERE student_id = $1`, studentID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, COALESCE(exam_id, ''), violation_type, evidence_score, detail, detected_at
		 FROM integrity_violations
		 WHERE student_id = $1
		 ORDER BY detected_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		studentID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	violations, err := scanViolations(rows)
	return violations, total, err
}

// ListAll retrieves violations across all students for the admin
// dashboard, newest first.
func (r *ViolationRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Violation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM integrity_violations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, COALESCE(exam_id, ''), violation_type, evidence_score, detail, detected_at
		 FROM integrity_violations
		 ORDER BY detected_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	violations, err := scanViolations(rows)
	return violations, total, err
}

func scanViolations(rows pgx.Rows) ([]model.Violation, error) {
	var violations []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(&v.ID, &v.StudentID, &v.ExamID, &v.ViolationType, &v.EvidenceScore, &v.Detail, &v.DetectedAt); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}
