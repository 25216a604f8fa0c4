package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(issuesCmd)
	issuesCmd.Flags().StringP("output", "o", "table", "Output format (table, yaml or json)")
}

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List milestone issues of the data repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		issues := a.service.Issues(cmd.Context())
		if format == "table" {
			return writeIssueTable(cmd.OutOrStdout(), issues)
		}
		return writeOutput(cmd.OutOrStdout(), format, issues)
	},
}

func writeIssueTable(w io.Writer, issues []types.Issue) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tSTATE\tTITLE\tMILESTONE\tLABELS")
	for _, is := range issues {
		milestone := "-"
		if is.Milestone != nil {
			milestone = is.Milestone.Title
			if is.Milestone.DueOn != "" {
				milestone += " (" + is.Milestone.DueOn + ")"
			}
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\n", is.Number, is.State, is.Title, milestone, strings.Join(is.Labels, ","))
	}
	return tw.Flush()
}
