package commands

import (
	"fmt"

	"github.com/goblinsan/gh-milestone-tracker/pkg/config"
	"github.com/goblinsan/gh-milestone-tracker/pkg/github"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display information about the authenticated GitHub user",
	Long:  `Display information about the authenticated GitHub user using the provided token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString(config.KeyToken)
		if token == "" {
			return fmt.Errorf("GitHub token is required. Set it via --token flag, %s_TOKEN environment variable, or config file", config.EnvPrefix)
		}

		client := github.NewClient(token)
		user, err := client.GetAuthenticatedUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get authenticated user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged in as: %s\n", user.GetLogin())
		if user.GetName() != "" {
			fmt.Fprintf(out, "Name: %s\n", user.GetName())
		}
		if user.GetEmail() != "" {
			fmt.Fprintf(out, "Email: %s\n", user.GetEmail())
		}

		return nil
	},
}
