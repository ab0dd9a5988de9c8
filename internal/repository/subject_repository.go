package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/schedulifyx-api/internal/models"
)

const subjectColumns = `id, code, name, teacher, section, weekly_periods, room_type, created_by, created_at, updated_at`

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ExistsByCode checks uniqueness of a subject code within a section.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, section, code string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE LOWER(section) = LOWER($1) AND LOWER(code) = LOWER($2) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, section, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (` + subjectColumns + `) VALUES (:id, :code, :name, :teacher, :section, :weekly_periods, :room_type, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", mapWriteError(err))
	}
	return nil
}

// List returns subjects ordered by section then code. When sections is not
// empty only those sections are returned.
func (r *SubjectRepository) List(ctx context.Context, sections []string) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects`
	var args []interface{}
	if len(sections) > 0 {
		lowered := make([]string, len(sections))
		for i, section := range sections {
			lowered[i] = strings.ToLower(strings.TrimSpace(section))
		}
		query += ` WHERE LOWER(section) = ANY($1)`
		args = append(args, pq.Array(lowered))
	}
	query += ` ORDER BY section ASC, code ASC`

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
