package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/models"
)

var subjectRowColumns = []string{"id", "code", "name", "teacher", "section", "weekly_periods", "room_type", "created_by", "created_at", "updated_at"}

func TestSubjectRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE LOWER(section) = LOWER($1) AND LOWER(code) = LOWER($2) LIMIT 1")).
		WithArgs("X-A", "MATH").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByCode(context.Background(), "X-A", "MATH")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").
		WithArgs(sqlmock.AnyArg(), "MATH", "Mathematics", "Budi", "X-A", 4, models.RoomTypeLecture, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &models.Subject{Code: "MATH", Name: "Mathematics", Teacher: "Budi", Section: "X-A", WeeklyPeriods: 4, RoomType: models.RoomTypeLecture}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.NotEmpty(t, subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.Create(context.Background(), &models.Subject{Code: "MATH", Section: "X-A"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSubjectRepositoryListFiltersSections(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(subjectRowColumns).
		AddRow("s1", "MATH", "Mathematics", "Budi", "X-A", 4, "lecture", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE LOWER(section) = ANY($1) ORDER BY section ASC, code ASC")).
		WithArgs(pq.Array([]string{"x-a"})).
		WillReturnRows(rows)

	subjects, err := repo.List(context.Background(), []string{" X-A "})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, models.RoomTypeLecture, subjects[0].RoomType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects ORDER BY section ASC, code ASC")).
		WillReturnRows(sqlmock.NewRows(subjectRowColumns))

	subjects, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, subjects)
	assert.NoError(t, mock.ExpectationsWereMet())
}
