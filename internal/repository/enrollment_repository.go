package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeswin28/lms-backend/internal/domain"
)

// EnrollmentRepository defines persistence access for enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) error
	Exists(ctx context.Context, courseID, studentID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.Enrollment, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository returns a Postgres-backed implementation.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	const query = `
        INSERT INTO enrollments (course_id, student_id)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		enrollment.CourseID,
		enrollment.StudentID,
	).Scan(&enrollment.ID, &enrollment.CreatedAt)
}

func (r *enrollmentRepository) Exists(ctx context.Context, courseID, studentID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM enrollments WHERE course_id=$1 AND student_id=$2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, courseID, studentID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Enrollment, error) {
	const query = `
        SELECT id, course_id, student_id, created_at
        FROM enrollments WHERE student_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
