package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/goblinsan/gh-milestone-tracker/pkg/changelog"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(changelogCmd)
	f := changelogCmd.Flags()
	f.String("local-repo", "", "Read history from a local clone instead of GitHub (overrides local-repo setting)")
	f.String("local-branch", "", "Branch of the local clone to read (default HEAD)")
	f.Bool("recent", false, "Add entries for recently completed and overdue milestones")
	f.StringP("output", "o", "text", "Output format (text, yaml or json)")
}

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Show the changelog of the projects data file",
	Long: `Assemble a changelog from the most recent revisions of the projects data file.
Each revision contributes the events found by comparing it with its predecessor
and the events suggested by its commit message. When no history is available a
built-in example changelog is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		localRepo, _ := flags.GetString("local-repo")
		localBranch, _ := flags.GetString("local-branch")
		recent, _ := flags.GetBool("recent")
		format, _ := flags.GetString("output")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		assembler, err := a.assembler(localRepo, localBranch)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		entries := assembler.Changelog(ctx)
		if recent {
			entries = append(changelog.Recent(a.service.Projects(ctx), now()), entries...)
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Date.After(entries[j].Date)
			})
		}

		if format == "text" {
			writeChangelogText(cmd.OutOrStdout(), entries)
			return nil
		}
		return writeOutput(cmd.OutOrStdout(), format, entries)
	},
}

func writeChangelogText(w io.Writer, entries []types.ChangelogEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s", e.Version, e.Date.Format("2006-01-02 15:04"))
		if e.CommitHash != "" {
			fmt.Fprintf(w, "  %s", e.CommitHash)
		}
		if e.Author != "" {
			fmt.Fprintf(w, "  by %s", e.Author)
		}
		fmt.Fprintln(w)
		for _, c := range e.Changes {
			fmt.Fprintf(w, "  [%s] %s: %s\n", c.Kind, c.Title, c.Description)
		}
		fmt.Fprintln(w)
	}
}
