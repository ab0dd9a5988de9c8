package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
)

func newGenerateCommand(a *app) *cobra.Command {
	var req dto.GenerateTimetableRequest
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new timetable from the stored subjects and rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			c := a.client()
			var timetable *dto.TimetableResponse
			var err error
			a.busy("Generating timetable...", func() {
				timetable, err = c.Generate(cmd.Context(), req)
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Timetable generated")
			renderTimetable(cmd.OutOrStdout(), timetable)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&req.Days, "days", nil, "days to schedule, 1=Monday..7=Sunday")
	cmd.Flags().IntVar(&req.PeriodsPerDay, "periods", 0, "periods per day")
	cmd.Flags().StringSliceVar(&req.Sections, "section", nil, "only these sections")
	return cmd
}

func newResultCommand(a *app) *cobra.Command {
	var section, format, output string
	cmd := &cobra.Command{
		Use:   "result",
		Short: "Show or download the latest timetable",
		Long: `Show the latest timetable, or save it with --format csv|pdf|ics.
Exports are written to --output, or timetable.<format> in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			c := a.client()

			if format == "" || format == "json" || format == "table" {
				var timetable *dto.TimetableResponse
				var err error
				a.busy("Fetching timetable...", func() {
					timetable, err = c.Result(cmd.Context(), section)
				})
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd.OutOrStdout(), timetable)
				}
				renderTimetable(cmd.OutOrStdout(), timetable)
				return nil
			}

			var body []byte
			var err error
			a.busy("Downloading "+format+" export...", func() {
				body, _, err = c.Export(cmd.Context(), section, format)
			})
			if err != nil {
				return err
			}
			if output == "" {
				output = "timetable." + format
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(output, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			printSuccess(cmd.OutOrStdout(), "Saved "+output)
			return nil
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "only this section")
	cmd.Flags().StringVarP(&format, "format", "f", "", "table (default), json, csv, pdf or ics")
	cmd.Flags().StringVarP(&output, "output", "o", "", "export file, - for stdout")
	return cmd
}

// renderTimetable prints one table per section followed by any conflicts.
func renderTimetable(w io.Writer, t *dto.TimetableResponse) {
	printBanner(w, fmt.Sprintf("Score %.0f  ·  %d/%d lessons placed  ·  %d conflict(s)",
		t.Score, t.Stats.PlacedLessons, t.Stats.RequestedLessons, len(t.Conflicts)))

	bySection := make(map[string][][]string)
	for _, slot := range t.Slots {
		bySection[slot.Section] = append(bySection[slot.Section], []string{
			slot.Day,
			strconv.Itoa(slot.Period),
			slot.SubjectCode,
			slot.SubjectName,
			slot.Teacher,
			slot.RoomName,
		})
	}
	for _, section := range t.Sections {
		rows := bySection[section]
		fmt.Fprintln(w, accentStyle.Render("\n"+section))
		if len(rows) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("no lessons placed"))
			continue
		}
		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(mutedStyle).
			Headers("Day", "Period", "Code", "Subject", "Teacher", "Room").
			Rows(rows...)
		fmt.Fprintln(w, tbl.String())
	}

	for _, conflict := range t.Conflicts {
		fmt.Fprintln(w, errorStyle.Render(conflict.Type)+" "+conflict.Message)
	}
}
