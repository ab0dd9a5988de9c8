package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
	"github.com/noah-isme/schedulifyx-api/internal/models"
)

const (
	conflictUnfulfilledLoad = "UNFULFILLED_LOAD"
	conflictNoRoom          = "NO_ROOM"

	maxRepairIterations = 64
)

// timetableInput is everything one generation run needs.
type timetableInput struct {
	Days          []int
	PeriodsPerDay int
	Subjects      []models.Subject
	Rooms         []models.Room
}

type timetableOutput struct {
	Slots     []dto.TimetableSlot
	Conflicts []dto.TimetableConflict
	Stats     dto.TimetableStats
	Score     float64
}

// generateTimetable places every weekly period of every subject greedily and
// then compacts each section's days. Sections, teachers and rooms never hold
// two lessons in the same cell and rooms always match the subject's type.
func generateTimetable(in timetableInput) timetableOutput {
	state := newTimetableState(in.Days, in.PeriodsPerDay, in.Rooms)

	subjects := make([]models.Subject, len(in.Subjects))
	copy(subjects, in.Subjects)
	sort.SliceStable(subjects, func(i, j int) bool {
		if subjects[i].WeeklyPeriods != subjects[j].WeeklyPeriods {
			return subjects[i].WeeklyPeriods > subjects[j].WeeklyPeriods
		}
		if subjects[i].Section != subjects[j].Section {
			return subjects[i].Section < subjects[j].Section
		}
		return subjects[i].Code < subjects[j].Code
	})

	conflicts := make([]dto.TimetableConflict, 0)
	requested := 0
	for _, subject := range subjects {
		requested += subject.WeeklyPeriods
		if len(state.roomsByType[subject.RoomType]) == 0 {
			conflicts = append(conflicts, dto.TimetableConflict{
				Type:    conflictNoRoom,
				Message: fmt.Sprintf("no %s room available for subject %s (%s)", subject.RoomType, subject.Code, subject.Section),
				Meta: map[string]any{
					"subject_id": subject.ID,
					"section":    subject.Section,
					"room_type":  subject.RoomType,
					"unplaced":   subject.WeeklyPeriods,
				},
			})
			continue
		}
		for i := 0; i < subject.WeeklyPeriods; i++ {
			if state.assign(subject) {
				continue
			}
			conflicts = append(conflicts, dto.TimetableConflict{
				Type:    conflictUnfulfilledLoad,
				Message: fmt.Sprintf("unable to schedule subject %s for section %s", subject.Code, subject.Section),
				Meta: map[string]any{
					"subject_id": subject.ID,
					"section":    subject.Section,
					"teacher":    subject.Teacher,
				},
			})
		}
	}

	iterations := state.repairGaps(maxRepairIterations)
	slots := state.exportSlots()
	gapPenalty := calculateGapPenalty(slots)
	score := math.Max(0, 100-float64(len(conflicts))*10-gapPenalty*2)

	return timetableOutput{
		Slots:     slots,
		Conflicts: conflicts,
		Score:     score,
		Stats: dto.TimetableStats{
			RequestedLessons: requested,
			PlacedLessons:    len(slots),
			RepairIterations: iterations,
			GapPenalty:       gapPenalty,
		},
	}
}

type cell struct {
	Day    int
	Period int
}

type sectionCell struct {
	Section string
	cell
}

type ownerCell struct {
	Owner string
	cell
}

type timetableState struct {
	days          []int
	periodsPerDay int
	roomsByType   map[models.RoomType][]models.Room
	roomTypes     map[string]models.RoomType

	sections    map[sectionCell]dto.TimetableSlot
	teacherBusy map[ownerCell]bool
	roomBusy    map[ownerCell]bool
	dayLoad     map[string]map[int]int
}

func newTimetableState(days []int, periodsPerDay int, rooms []models.Room) *timetableState {
	byType := make(map[models.RoomType][]models.Room)
	roomTypes := make(map[string]models.RoomType, len(rooms))
	for _, room := range rooms {
		byType[room.RoomType] = append(byType[room.RoomType], room)
		roomTypes[room.ID] = room.RoomType
	}
	for roomType := range byType {
		list := byType[roomType]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Capacity != list[j].Capacity {
				return list[i].Capacity < list[j].Capacity
			}
			return list[i].Name < list[j].Name
		})
	}
	return &timetableState{
		days:          days,
		periodsPerDay: periodsPerDay,
		roomsByType:   byType,
		roomTypes:     roomTypes,
		sections:      make(map[sectionCell]dto.TimetableSlot),
		teacherBusy:   make(map[ownerCell]bool),
		roomBusy:      make(map[ownerCell]bool),
		dayLoad:       make(map[string]map[int]int),
	}
}

func teacherKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// assign places one lesson of subject on the section's least loaded day at
// the earliest period where the section, teacher and a matching room are free.
func (s *timetableState) assign(subject models.Subject) bool {
	dayOrder := make([]int, len(s.days))
	copy(dayOrder, s.days)
	load := s.dayLoad[subject.Section]
	sort.SliceStable(dayOrder, func(i, j int) bool {
		return load[dayOrder[i]] < load[dayOrder[j]]
	})

	for _, day := range dayOrder {
		for period := 1; period <= s.periodsPerDay; period++ {
			at := cell{Day: day, Period: period}
			if !s.canPlace(subject.Section, subject.Teacher, at) {
				continue
			}
			room, ok := s.freeRoom(subject.RoomType, at, "")
			if !ok {
				continue
			}
			s.place(subject, room, at)
			return true
		}
	}
	return false
}

func (s *timetableState) canPlace(section, teacher string, at cell) bool {
	if at.Period < 1 || at.Period > s.periodsPerDay {
		return false
	}
	if _, taken := s.sections[sectionCell{Section: section, cell: at}]; taken {
		return false
	}
	return !s.teacherBusy[ownerCell{Owner: teacherKey(teacher), cell: at}]
}

// freeRoom returns the first room of roomType free at the cell, preferring
// the room named by preferID.
func (s *timetableState) freeRoom(roomType models.RoomType, at cell, preferID string) (models.Room, bool) {
	rooms := s.roomsByType[roomType]
	if preferID != "" {
		for _, room := range rooms {
			if room.ID == preferID && !s.roomBusy[ownerCell{Owner: room.ID, cell: at}] {
				return room, true
			}
		}
	}
	for _, room := range rooms {
		if !s.roomBusy[ownerCell{Owner: room.ID, cell: at}] {
			return room, true
		}
	}
	return models.Room{}, false
}

func (s *timetableState) place(subject models.Subject, room models.Room, at cell) {
	s.sections[sectionCell{Section: subject.Section, cell: at}] = dto.TimetableSlot{
		Section:     subject.Section,
		DayOfWeek:   at.Day,
		Day:         dayName(at.Day),
		Period:      at.Period,
		SubjectID:   subject.ID,
		SubjectCode: subject.Code,
		SubjectName: subject.Name,
		Teacher:     subject.Teacher,
		RoomID:      room.ID,
		RoomName:    room.Name,
	}
	s.teacherBusy[ownerCell{Owner: teacherKey(subject.Teacher), cell: at}] = true
	s.roomBusy[ownerCell{Owner: room.ID, cell: at}] = true
	if s.dayLoad[subject.Section] == nil {
		s.dayLoad[subject.Section] = make(map[int]int)
	}
	s.dayLoad[subject.Section][at.Day]++
}

// repairGaps pulls lessons that follow a free period one period earlier while
// every constraint still holds. Each successful move counts as an iteration.
func (s *timetableState) repairGaps(maxIterations int) int {
	iterations := 0
	for iterations < maxIterations {
		if !s.repairOnce() {
			break
		}
		iterations++
	}
	return iterations
}

func (s *timetableState) repairOnce() bool {
	for _, section := range s.sectionNames() {
		for _, day := range s.days {
			periods := s.periodsFor(section, day)
			for i := 0; i < len(periods)-1; i++ {
				current, next := periods[i], periods[i+1]
				if next-current <= 1 {
					continue
				}
				if s.moveSlot(section, day, next, current+1) {
					return true
				}
			}
		}
	}
	return false
}

func (s *timetableState) moveSlot(section string, day, from, to int) bool {
	fromKey := sectionCell{Section: section, cell: cell{Day: day, Period: from}}
	slot := s.sections[fromKey]
	target := cell{Day: day, Period: to}
	if !s.canPlace(section, slot.Teacher, target) {
		return false
	}
	room, ok := s.freeRoom(s.roomTypes[slot.RoomID], target, slot.RoomID)
	if !ok {
		return false
	}

	delete(s.sections, fromKey)
	source := cell{Day: day, Period: from}
	delete(s.teacherBusy, ownerCell{Owner: teacherKey(slot.Teacher), cell: source})
	delete(s.roomBusy, ownerCell{Owner: slot.RoomID, cell: source})

	slot.Period = to
	slot.RoomID = room.ID
	slot.RoomName = room.Name
	s.sections[sectionCell{Section: section, cell: target}] = slot
	s.teacherBusy[ownerCell{Owner: teacherKey(slot.Teacher), cell: target}] = true
	s.roomBusy[ownerCell{Owner: room.ID, cell: target}] = true
	return true
}

func (s *timetableState) sectionNames() []string {
	seen := make(map[string]struct{})
	for key := range s.sections {
		seen[key.Section] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *timetableState) periodsFor(section string, day int) []int {
	var periods []int
	for key := range s.sections {
		if key.Section == section && key.Day == day {
			periods = append(periods, key.Period)
		}
	}
	sort.Ints(periods)
	return periods
}

func (s *timetableState) exportSlots() []dto.TimetableSlot {
	slots := make([]dto.TimetableSlot, 0, len(s.sections))
	for _, slot := range s.sections {
		slots = append(slots, slot)
	}
	sortSlots(slots)
	return slots
}

func sortSlots(slots []dto.TimetableSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Section != slots[j].Section {
			return slots[i].Section < slots[j].Section
		}
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].Period < slots[j].Period
	})
}

// calculateGapPenalty counts free periods sitting between two lessons of the
// same section on the same day.
func calculateGapPenalty(slots []dto.TimetableSlot) float64 {
	type sectionDay struct {
		section string
		day     int
	}
	grouped := make(map[sectionDay][]int)
	for _, slot := range slots {
		key := sectionDay{section: slot.Section, day: slot.DayOfWeek}
		grouped[key] = append(grouped[key], slot.Period)
	}

	var penalty float64
	for _, periods := range grouped {
		if len(periods) <= 1 {
			continue
		}
		sort.Ints(periods)
		for i := 0; i < len(periods)-1; i++ {
			if diff := periods[i+1] - periods[i]; diff > 1 {
				penalty += float64(diff - 1)
			}
		}
	}
	return penalty
}

func normalizeDays(days []int) []int {
	unique := make(map[int]struct{})
	for _, day := range days {
		if day < 1 || day > 7 {
			continue
		}
		unique[day] = struct{}{}
	}
	result := make([]int, 0, len(unique))
	for day := range unique {
		result = append(result, day)
	}
	sort.Ints(result)
	return result
}

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

func dayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("Day %d", day)
}
