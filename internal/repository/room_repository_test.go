package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/models"
)

func TestRoomRepositoryCreateAndExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("Lab 1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "Lab 1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "Room 101", 32, models.RoomTypeLecture, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Name: "Room 101", Capacity: 32, RoomType: models.RoomTypeLecture}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "room_type", "created_by", "created_at", "updated_at"}).
		AddRow("r1", "Lab 1", 24, "lab", nil, now, now).
		AddRow("r2", "Room 101", 32, "lecture", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY name ASC")).WillReturnRows(rows)

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, models.RoomTypeLab, rooms[0].RoomType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
