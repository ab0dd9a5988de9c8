package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	"github.com/noah-isme/schedulifyx-api/internal/models"
)

func lectureRoom(id, name string) models.Room {
	return models.Room{ID: id, Name: name, Capacity: 30, RoomType: models.RoomTypeLecture}
}

func newTestSubject(id, code, section, teacher string, periods int, roomType models.RoomType) models.Subject {
	return models.Subject{ID: id, Code: code, Name: code, Section: section, Teacher: teacher, WeeklyPeriods: periods, RoomType: roomType}
}

func assertNoDoubleBooking(t *testing.T, slots []dto.TimetableSlot) {
	t.Helper()
	sections := map[string]bool{}
	teachers := map[string]bool{}
	rooms := map[string]bool{}
	for _, slot := range slots {
		at := func(owner string) string {
			return owner + "|" + string(rune('0'+slot.DayOfWeek)) + "|" + string(rune('0'+slot.Period))
		}
		assert.False(t, sections[at(slot.Section)], "section double booked: %+v", slot)
		assert.False(t, teachers[at(teacherKey(slot.Teacher))], "teacher double booked: %+v", slot)
		assert.False(t, rooms[at(slot.RoomID)], "room double booked: %+v", slot)
		sections[at(slot.Section)] = true
		teachers[at(teacherKey(slot.Teacher))] = true
		rooms[at(slot.RoomID)] = true
	}
}

func TestGenerateTimetablePlacesAllLessons(t *testing.T) {
	out := generateTimetable(timetableInput{
		Days:          []int{1, 2},
		PeriodsPerDay: 2,
		Subjects: []models.Subject{
			newTestSubject("s1", "MATH", "X-A", "Budi", 2, models.RoomTypeLecture),
			newTestSubject("s2", "BIO", "X-A", "Sari", 2, models.RoomTypeLecture),
		},
		Rooms: []models.Room{lectureRoom("r1", "Room 101")},
	})

	assert.Len(t, out.Slots, 4)
	assert.Empty(t, out.Conflicts)
	assert.Equal(t, 4, out.Stats.RequestedLessons)
	assert.Equal(t, 4, out.Stats.PlacedLessons)
	assert.Equal(t, 100.0, out.Score)
	assertNoDoubleBooking(t, out.Slots)
}

func TestGenerateTimetableSpreadsAcrossDays(t *testing.T) {
	out := generateTimetable(timetableInput{
		Days:          []int{1, 2, 3},
		PeriodsPerDay: 4,
		Subjects:      []models.Subject{newTestSubject("s1", "MATH", "X-A", "Budi", 3, models.RoomTypeLecture)},
		Rooms:         []models.Room{lectureRoom("r1", "Room 101")},
	})

	require.Len(t, out.Slots, 3)
	days := map[int]bool{}
	for _, slot := range out.Slots {
		days[slot.DayOfWeek] = true
		assert.Equal(t, 1, slot.Period)
	}
	assert.Len(t, days, 3)
}

func TestGenerateTimetableSharedTeacherAcrossSections(t *testing.T) {
	out := generateTimetable(timetableInput{
		Days:          []int{1},
		PeriodsPerDay: 3,
		Subjects: []models.Subject{
			newTestSubject("s1", "MATH", "X-A", "Budi", 2, models.RoomTypeLecture),
			newTestSubject("s2", "MATH", "X-B", "budi ", 2, models.RoomTypeLecture),
		},
		Rooms: []models.Room{lectureRoom("r1", "Room 101"), lectureRoom("r2", "Room 102")},
	})

	assertNoDoubleBooking(t, out.Slots)
	assert.Len(t, out.Slots, 3)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, conflictUnfulfilledLoad, out.Conflicts[0].Type)
	assert.Equal(t, 90.0, out.Score)
}

func TestGenerateTimetableMatchesRoomType(t *testing.T) {
	out := generateTimetable(timetableInput{
		Days:          []int{1, 2},
		PeriodsPerDay: 2,
		Subjects: []models.Subject{
			newTestSubject("s1", "CHEM", "X-A", "Rina", 2, models.RoomTypeLab),
			newTestSubject("s2", "HIST", "X-A", "Dedi", 1, models.RoomTypeLecture),
		},
		Rooms: []models.Room{
			lectureRoom("r1", "Room 101"),
			{ID: "r2", Name: "Lab 1", Capacity: 20, RoomType: models.RoomTypeLab},
		},
	})

	require.Len(t, out.Slots, 3)
	for _, slot := range out.Slots {
		if slot.SubjectCode == "CHEM" {
			assert.Equal(t, "r2", slot.RoomID)
		} else {
			assert.Equal(t, "r1", slot.RoomID)
		}
	}
}

func TestGenerateTimetableReportsMissingRoomType(t *testing.T) {
	out := generateTimetable(timetableInput{
		Days:          []int{1},
		PeriodsPerDay: 4,
		Subjects: []models.Subject{
			newTestSubject("s1", "CHEM", "X-A", "Rina", 2, models.RoomTypeLab),
			newTestSubject("s2", "HIST", "X-A", "Dedi", 1, models.RoomTypeLecture),
		},
		Rooms: []models.Room{lectureRoom("r1", "Room 101")},
	})

	assert.Len(t, out.Slots, 1)
	require.Len(t, out.Conflicts, 1)
	assert.Equal(t, conflictNoRoom, out.Conflicts[0].Type)
	assert.Equal(t, 3, out.Stats.RequestedLessons)
}

func TestRepairGapsCompactsSectionDay(t *testing.T) {
	state := newTimetableState([]int{1}, 4, []models.Room{lectureRoom("r1", "Room 101")})
	math := newTestSubject("s1", "MATH", "X-A", "Budi", 1, models.RoomTypeLecture)
	bio := newTestSubject("s2", "BIO", "X-A", "Sari", 1, models.RoomTypeLecture)
	state.place(math, state.roomsByType[models.RoomTypeLecture][0], cell{Day: 1, Period: 1})
	state.place(bio, state.roomsByType[models.RoomTypeLecture][0], cell{Day: 1, Period: 4})

	assert.Equal(t, 2.0, calculateGapPenalty(state.exportSlots()))

	iterations := state.repairGaps(maxRepairIterations)
	assert.Equal(t, 1, iterations)

	slots := state.exportSlots()
	require.Len(t, slots, 2)
	assert.Equal(t, 2, slots[1].Period)
	assert.Zero(t, calculateGapPenalty(slots))
}

func TestRepairGapsRespectsTeacherClash(t *testing.T) {
	rooms := []models.Room{lectureRoom("r1", "Room 101"), lectureRoom("r2", "Room 102")}
	state := newTimetableState([]int{1}, 3, rooms)
	state.place(newTestSubject("s1", "MATH", "X-A", "Budi", 1, models.RoomTypeLecture), rooms[0], cell{Day: 1, Period: 1})
	state.place(newTestSubject("s2", "BIO", "X-A", "Sari", 1, models.RoomTypeLecture), rooms[0], cell{Day: 1, Period: 3})
	state.place(newTestSubject("s3", "BIO", "X-B", "Sari", 1, models.RoomTypeLecture), rooms[1], cell{Day: 1, Period: 2})

	assert.Zero(t, state.repairGaps(maxRepairIterations))
	assertNoDoubleBooking(t, state.exportSlots())
}

func TestNormalizeDays(t *testing.T) {
	assert.Equal(t, []int{1, 3, 7}, normalizeDays([]int{7, 3, 3, 0, 8, 1}))
	assert.Empty(t, normalizeDays(nil))
	assert.Equal(t, "Wednesday", dayName(3))
}
