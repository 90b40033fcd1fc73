package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeswin28/lms-backend/internal/domain"
)

// CourseRepository defines persistence access for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	UpdateStatus(ctx context.Context, id string, status domain.CourseStatus) error
	ListByStatus(ctx context.Context, status domain.CourseStatus) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository returns a Postgres-backed implementation.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (title, description, instructor_id, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		course.Title,
		course.Description,
		course.InstructorID,
		course.Status,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	const query = `
        SELECT id, title, description, instructor_id, status, created_at, updated_at
        FROM courses WHERE id=$1`

	var course domain.Course
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.InstructorID,
		&course.Status,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) UpdateStatus(ctx context.Context, id string, status domain.CourseStatus) error {
	const query = `UPDATE courses SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) ListByStatus(ctx context.Context, status domain.CourseStatus) ([]domain.Course, error) {
	const query = `
        SELECT id, title, description, instructor_id, status, created_at, updated_at
        FROM courses WHERE status=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var course domain.Course
		if err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Description,
			&course.InstructorID,
			&course.Status,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}
