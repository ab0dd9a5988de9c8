package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/noah-isme/schedulifyx-api/internal/models"
	"github.com/noah-isme/schedulifyx-api/internal/service"
)

func roomTypeSelect(value *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title("Room type").
		Options(
			huh.NewOption("Lecture room", string(models.RoomTypeLecture)),
			huh.NewOption("Laboratory", string(models.RoomTypeLab)),
		).
		Value(value)
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}
	return nil
}

func newAddSubjectCommand(a *app) *cobra.Command {
	var req service.CreateSubjectRequest
	var roomType string
	cmd := &cobra.Command{
		Use:   "add-subject",
		Short: "Add a subject taught to a section",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if !a.noInput && (req.Code == "" || req.Name == "" || req.Teacher == "" || req.Section == "" || req.WeeklyPeriods == 0) {
				periods := ""
				if req.WeeklyPeriods > 0 {
					periods = strconv.Itoa(req.WeeklyPeriods)
				}
				if roomType == "" {
					roomType = string(models.RoomTypeLecture)
				}
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Code").Value(&req.Code),
					huh.NewInput().Title("Name").Value(&req.Name),
					huh.NewInput().Title("Teacher").Value(&req.Teacher),
					huh.NewInput().Title("Section").Placeholder("X-A").Value(&req.Section),
					huh.NewInput().Title("Periods per week").Validate(positiveInt).Value(&periods),
					roomTypeSelect(&roomType),
				).Title("New subject"))
				if err := form.Run(); err != nil {
					return err
				}
				req.WeeklyPeriods, _ = strconv.Atoi(periods)
			}
			req.RoomType = models.RoomType(roomType)

			c := a.client()
			var subject *models.Subject
			var err error
			a.busy("Saving subject...", func() {
				subject, err = c.AddSubject(cmd.Context(), req)
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Subject %s added for %s (%d periods/week, %s)",
				subject.Code, subject.Section, subject.WeeklyPeriods, subject.RoomType))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Code, "code", "", "subject code")
	cmd.Flags().StringVar(&req.Name, "name", "", "subject name")
	cmd.Flags().StringVar(&req.Teacher, "teacher", "", "teacher name")
	cmd.Flags().StringVar(&req.Section, "section", "", "class section")
	cmd.Flags().IntVar(&req.WeeklyPeriods, "periods", 0, "periods per week")
	cmd.Flags().StringVar(&roomType, "room-type", "", "lecture or lab")
	return cmd
}

func newAddRoomCommand(a *app) *cobra.Command {
	var req service.CreateRoomRequest
	var roomType string
	cmd := &cobra.Command{
		Use:     "add-room",
		Aliases: []string{"add-room-venue"},
		Short:   "Add a room or venue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if !a.noInput && (req.Name == "" || req.Capacity == 0) {
				capacity := ""
				if req.Capacity > 0 {
					capacity = strconv.Itoa(req.Capacity)
				}
				if roomType == "" {
					roomType = string(models.RoomTypeLecture)
				}
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Name").Value(&req.Name),
					huh.NewInput().Title("Capacity").Validate(positiveInt).Value(&capacity),
					roomTypeSelect(&roomType),
				).Title("New room"))
				if err := form.Run(); err != nil {
					return err
				}
				req.Capacity, _ = strconv.Atoi(capacity)
			}
			req.RoomType = models.RoomType(roomType)

			c := a.client()
			var room *models.Room
			var err error
			a.busy("Saving room...", func() {
				room, err = c.AddRoom(cmd.Context(), req)
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Room %s added (capacity %d, %s)", room.Name, room.Capacity, room.RoomType))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "room name")
	cmd.Flags().IntVar(&req.Capacity, "capacity", 0, "seats")
	cmd.Flags().StringVar(&roomType, "room-type", "", "lecture or lab")
	return cmd
}
