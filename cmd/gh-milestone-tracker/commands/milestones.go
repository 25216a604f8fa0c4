package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goblinsan/gh-milestone-tracker/pkg/config"
	"github.com/goblinsan/gh-milestone-tracker/pkg/query"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(milestonesCmd)
	f := milestonesCmd.Flags()
	f.StringP("file", "f", "", "Read the projects document from a file instead of the repository")
	f.String("project", query.All, "Exact project name, or all")
	f.String("status", query.All, "Milestone status, incomplete, overdue, or all")
	f.String("range", string(query.RangeAll), "all, this-week, this-month, next-month or past-due")
	f.String("group", "", "Group the result by month or project")
	f.Int("upcoming", 0, "Only show the next N incomplete milestones")
	f.StringP("output", "o", "table", "Output format (table, yaml or json)")
}

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List milestones matching a filter",
	Long: `List the milestones of every project, filtered by project, status and due-date
range and sorted by due date. Dates are evaluated in the local time zone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		filePath, _ := flags.GetString("file")
		project, _ := flags.GetString("project")
		statusFlag, _ := flags.GetString("status")
		rangeFlag, _ := flags.GetString("range")
		group, _ := flags.GetString("group")
		upcoming, _ := flags.GetInt("upcoming")
		format, _ := flags.GetString("output")

		status, err := query.ParseStatus(statusFlag)
		if err != nil {
			return err
		}
		timeRange, err := query.ParseTimeRange(rangeFlag)
		if err != nil {
			return err
		}
		weekStart, err := weekStartSetting()
		if err != nil {
			return err
		}

		doc, err := loadDocument(cmd.Context(), filePath)
		if err != nil {
			return err
		}

		at := now()
		entries := query.Apply(query.Flatten(doc), query.Filter{
			Project:   project,
			Status:    status,
			TimeRange: timeRange,
			WeekStart: weekStart,
		}, at)
		if upcoming > 0 {
			entries = query.Upcoming(entries, at, upcoming)
		} else {
			entries = query.SortByDue(entries)
		}

		out := cmd.OutOrStdout()
		switch group {
		case "":
			if format == "table" {
				return writeMilestoneTable(out, entries, at)
			}
			return writeOutput(out, format, entries)
		case "month":
			groups := query.GroupByMonth(entries, at.Location())
			if format == "table" {
				for _, g := range groups {
					fmt.Fprintf(out, "%s %d\n", g.Month, g.Year)
					if err := writeMilestoneTable(out, g.Entries, at); err != nil {
						return err
					}
					fmt.Fprintln(out)
				}
				return nil
			}
			return writeOutput(out, format, groups)
		case "project":
			order, groups := query.GroupByProject(entries)
			if format == "table" {
				for _, id := range order {
					fmt.Fprintf(out, "%s\n", groups[id][0].ProjectName)
					if err := writeMilestoneTable(out, groups[id], at); err != nil {
						return err
					}
					fmt.Fprintln(out)
				}
				return nil
			}
			return writeOutput(out, format, groups)
		default:
			return fmt.Errorf("unknown group %q (use month or project)", group)
		}
	},
}

// loadDocument reads the document from filePath, or from the repository
// with external milestone files resolved when filePath is empty.
func loadDocument(ctx context.Context, filePath string) (*types.Document, error) {
	if filePath != "" {
		return readDocument(filePath)
	}
	a, err := newApp()
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.service.ResolvedProjects(ctx), nil
}

func weekStartSetting() (time.Weekday, error) {
	return config.ParseWeekday(viper.GetString(config.KeyWeekStart))
}

func writeMilestoneTable(w io.Writer, entries []query.Entry, at time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DUE\tPROJECT\tMILESTONE\tSTATUS\tPROGRESS")
	for _, e := range entries {
		due := e.DueDate
		if due == "" {
			due = "-"
		}
		status := string(e.Status)
		if query.Overdue(e, at) {
			status += " (overdue)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\n", due, e.ProjectName, e.Title, status, e.Progress)
	}
	return tw.Flush()
}
