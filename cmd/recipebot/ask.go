package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Answer a single recipe request",
	Long: `Answer a single recipe request and exit.

Examples:
  recipebot ask "chicken and rice, under 40 minutes"
  recipebot ask --json "vegetarian lasagna"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		finder, stop, err := startFinder(ctx)
		if err != nil {
			return err
		}
		defer stop()

		res, err := finder.Handle(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), res, asJSON)
	},
}

func init() {
	askCmd.Flags().BoolVar(&asJSON, "json", false, "print recipes as JSON")
}
