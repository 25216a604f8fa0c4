package commands

import (
	"github.com/goblinsan/gh-milestone-tracker/pkg/diff"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().String("old", "", "The older projects file")
	diffCmd.Flags().String("new", "", "The newer projects file")
	diffCmd.Flags().String("revision", "", "Revision id attached to every event")
	diffCmd.Flags().StringP("output", "o", "yaml", "Output format (yaml or json)")
	diffCmd.MarkFlagRequired("old")
	diffCmd.MarkFlagRequired("new")
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the change events between two projects files",
	Long: `Compare two versions of the projects file and print the change events that
explain the difference: added projects, milestones that became completed or
delayed, and progress or status updates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		oldPath, _ := cmd.Flags().GetString("old")
		newPath, _ := cmd.Flags().GetString("new")
		revision, _ := cmd.Flags().GetString("revision")
		format, _ := cmd.Flags().GetString("output")

		oldDoc, err := readDocument(oldPath)
		if err != nil {
			return err
		}
		newDoc, err := readDocument(newPath)
		if err != nil {
			return err
		}

		return writeOutput(cmd.OutOrStdout(), format, diff.Compare(newDoc, oldDoc, revision))
	},
}
