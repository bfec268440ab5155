package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the discal application
var rootCmd = &cobra.Command{
	Use:   "discal",
	Short: "Discord bot that sets up a shared Google calendar per server",
	Long: `discal is a Discord bot that lets the members of a server create one
public Google calendar for the server.

Members stage the calendar with !calendar commands and confirm it once it is
complete. Administrators choose who may manage the bot with !discal.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "discal version %s\n" .Version}}`)

	// If no subcommand is provided, run the bot
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
