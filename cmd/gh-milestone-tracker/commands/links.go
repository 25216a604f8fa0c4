package commands

import (
	"fmt"

	"github.com/goblinsan/gh-milestone-tracker/pkg/config"
	"github.com/goblinsan/gh-milestone-tracker/pkg/links"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(linksCmd)
	linksCmd.Flags().StringP("file", "f", "", "Read the projects document from a file instead of the repository")
	linksCmd.Flags().String("project", "", "Project id")
	linksCmd.Flags().String("milestone", "", "Milestone id; prints an issue link instead of a change proposal link")
	linksCmd.MarkFlagRequired("project")
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Print pre-filled GitHub links for updating a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		projectID, _ := cmd.Flags().GetString("project")
		milestoneID, _ := cmd.Flags().GetString("milestone")

		doc, err := loadDocument(cmd.Context(), filePath)
		if err != nil {
			return err
		}
		builder := links.New(viper.GetString(config.KeyOwner), viper.GetString(config.KeyRepo))
		builder.BaseBranch = viper.GetString(config.KeyBranch)

		var project *types.Project
		for i := range doc.Projects {
			if doc.Projects[i].ID == projectID {
				project = &doc.Projects[i]
				break
			}
		}
		if project == nil {
			return fmt.Errorf("project %q not found", projectID)
		}

		if milestoneID == "" {
			fmt.Fprintln(cmd.OutOrStdout(), builder.ProposalURL(*project, now()))
			return nil
		}
		for _, m := range project.Milestones {
			if m.ID == milestoneID {
				fmt.Fprintln(cmd.OutOrStdout(), builder.IssueURL(project.ID, m))
				return nil
			}
		}
		return fmt.Errorf("milestone %q not found in project %q", milestoneID, projectID)
	},
}
