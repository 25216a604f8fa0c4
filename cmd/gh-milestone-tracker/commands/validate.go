package commands

import (
	"fmt"
	"regexp"

	"github.com/goblinsan/gh-milestone-tracker/pkg/query"
	"github.com/goblinsan/gh-milestone-tracker/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("file", "f", "", "The projects file to validate (JSON or YAML)")
	validateCmd.MarkFlagRequired("file")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a projects data file",
	Long: `Validate a projects data file for correctness. Checks it against the document
schema, then checks referential integrity: project and milestone identifiers must
be unique and due dates must be real calendar dates. Milestone dependencies that
name no known milestone are reported as warnings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")

		doc, err := readDocument(filePath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range dependencyWarnings(doc) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}

		errs := validateDocument(doc)
		if len(errs) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed with %d error(s):\n", len(errs))
			for i, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %d. %s\n", i+1, e)
			}
			return fmt.Errorf("%s is not valid", filePath)
		}

		fmt.Fprintln(out, "Document is valid.")
		return nil
	},
}

func validateDocument(doc *types.Document) []string {
	var errs []string

	projectIDs := make(map[string]bool)
	for i, p := range doc.Projects {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("projects[%d]: id is required", i))
		} else if projectIDs[p.ID] {
			errs = append(errs, fmt.Sprintf("projects[%d]: duplicate id %q", i, p.ID))
		}
		projectIDs[p.ID] = true

		if p.DueDate != "" {
			if _, ok := (types.Milestone{DueDate: p.DueDate}).Due(nil); !ok {
				errs = append(errs, fmt.Sprintf("projects[%d] %q: dueDate %q is not a valid date", i, p.ID, p.DueDate))
			}
		}

		milestoneIDs := make(map[string]bool)
		for j, m := range p.Milestones {
			if m.Title == "" {
				errs = append(errs, fmt.Sprintf("projects[%d].milestones[%d]: title is required", i, j))
			}
			if milestoneIDs[m.ID] {
				errs = append(errs, fmt.Sprintf("projects[%d].milestones[%d]: duplicate id %q", i, j, m.ID))
			}
			milestoneIDs[m.ID] = true

			if _, ok := m.Due(nil); m.DueDate != "" && !ok {
				errs = append(errs, fmt.Sprintf("projects[%d].milestones[%d] %q: dueDate %q is not a valid date", i, j, m.ID, m.DueDate))
			}
		}
	}

	return errs
}

var milestoneRefPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+-m\d+$`)

// dependencyWarnings lists milestone dependencies written as milestone
// identifiers that match no milestone in the document.
func dependencyWarnings(doc *types.Document) []string {
	idx := query.NewIndex(doc)
	var warnings []string
	for _, p := range doc.Projects {
		for _, m := range p.Milestones {
			for _, dep := range m.Dependencies {
				if milestoneRefPattern.MatchString(dep) && idx.Resolve(dep) == dep {
					warnings = append(warnings, fmt.Sprintf("milestone %q depends on unknown milestone %q", m.ID, dep))
				}
			}
		}
	}
	return warnings
}
