package commands

import (
	"fmt"
	"os"

	"github.com/goblinsan/gh-milestone-tracker/pkg/parser"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", "", "The milestones.md document to parse")
	parseCmd.Flags().String("project", "", "Project id used to generate milestone ids")
	parseCmd.Flags().StringP("output", "o", "yaml", "Output format (yaml or json)")
	parseCmd.MarkFlagRequired("file")
	parseCmd.MarkFlagRequired("project")
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a milestones.md document into milestone records",
	Long: `Parse a markdown milestones document. Every level-2 or level-3 heading starts a
milestone; status, due date, progress, sections and links are read from the lines
that follow it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		projectID, _ := cmd.Flags().GetString("project")
		format, _ := cmd.Flags().GetString("output")

		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		milestones := parser.ParseMilestones(string(content), projectID)
		return writeOutput(cmd.OutOrStdout(), format, milestones)
	},
}
