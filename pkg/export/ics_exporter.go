package export

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is one recurring lesson in an exported calendar.
type CalendarEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders weekly recurring events as an iCalendar file.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{now: time.Now}
}

// Render writes every event with a weekly recurrence rule.
func (e *ICSExporter) Render(name string, events []CalendarEvent) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SchedulifyX//Timetable//EN")
	if name != "" {
		cal.SetXWRCalName(name)
	}

	stamp := e.now().UTC()
	for _, item := range events {
		if !item.End.After(item.Start) {
			return nil, fmt.Errorf("event %s ends before it starts", item.UID)
		}
		event := cal.AddEvent(item.UID)
		event.SetCreatedTime(stamp)
		event.SetDtStampTime(stamp)
		event.SetModifiedAt(stamp)
		event.SetStartAt(item.Start)
		event.SetEndAt(item.End)
		event.SetSummary(item.Summary)
		if item.Location != "" {
			event.SetLocation(item.Location)
		}
		if item.Description != "" {
			event.SetDescription(item.Description)
		}
		event.AddRrule("FREQ=WEEKLY")
	}

	buf := &bytes.Buffer{}
	if err := cal.SerializeTo(buf); err != nil {
		return nil, fmt.Errorf("render ics: %w", err)
	}
	return buf.Bytes(), nil
}
