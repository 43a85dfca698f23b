package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
	asJSON   bool
)

var rootCmd = &cobra.Command{
	Use:   "recipebot",
	Short: "Find recipes from a plain-language cooking request",
	Long: `Recipebot turns a request such as "something vegan with chickpeas in 30 minutes"
into recipe search criteria, searches the recipe provider, and enriches each
match with instructions, nutrition, a tutorial video and an image.

Credentials are read from the environment (or a .env file):
  RECIPEFINDER_AI_API_KEY         language model key
  RECIPEFINDER_PROVIDER_API_KEY   recipe provider key`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			log.Printf("Ignoring env file %s: %v", envFile, err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or /etc/recipefinder/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", ".env", "optional dotenv file",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "override app.log_level",
	)

	rootCmd.AddCommand(askCmd, chatCmd, serveCmd)
}
