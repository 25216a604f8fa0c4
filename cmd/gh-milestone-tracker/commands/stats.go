package commands

import (
	"fmt"

	"github.com/goblinsan/gh-milestone-tracker/pkg/query"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("file", "f", "", "Read the projects document from a file instead of the repository")
	statsCmd.Flags().String("search", "", "Only count projects whose name or next milestone contains this text")
	statsCmd.Flags().String("status", query.All, "Only count projects with this status")
	statsCmd.Flags().String("category", query.All, "Only count projects in this category")
	statsCmd.Flags().StringP("output", "o", "text", "Output format (text, yaml or json)")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize project health and milestone completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		search, _ := cmd.Flags().GetString("search")
		status, _ := cmd.Flags().GetString("status")
		category, _ := cmd.Flags().GetString("category")
		format, _ := cmd.Flags().GetString("output")

		doc, err := loadDocument(cmd.Context(), filePath)
		if err != nil {
			return err
		}

		filtered := *doc
		filtered.Projects = query.FilterProjects(doc.Projects, query.ProjectFilter{
			Search:   search,
			Status:   status,
			Category: category,
		})
		stats := query.Summarize(&filtered, now())

		if format != "text" {
			return writeOutput(cmd.OutOrStdout(), format, stats)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Projects:            %d of %d\n", stats.TotalProjects, len(doc.Projects))
		fmt.Fprintf(out, "  on track:          %d\n", stats.OnTrackProjects)
		fmt.Fprintf(out, "  at risk:           %d\n", stats.AtRiskProjects)
		fmt.Fprintf(out, "  delayed:           %d\n", stats.DelayedProjects)
		fmt.Fprintf(out, "  completed:         %d\n", stats.CompletedProjects)
		fmt.Fprintf(out, "Upcoming milestones: %d\n", stats.UpcomingMilestones)
		fmt.Fprintf(out, "Completion rate:     %d%%\n", stats.CompletionRate)
		fmt.Fprintf(out, "Categories:          %v\n", query.Categories(doc.Projects))
		return nil
	},
}
