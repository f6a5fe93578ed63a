package cli

import (
	"github.com/spf13/cobra"

	"github.com/numplan/numplan/metadata"
	"github.com/numplan/numplan/metadata/plans"
	"github.com/numplan/numplan/phonenumber"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersion is called from main to inject build-time version info.
func SetVersion(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

var rootCmd = &cobra.Command{
	Use:   "numplan",
	Short: "numplan — phone number parsing, validation, and formatting",
	Long: `numplan parses, validates, formats, and finds phone numbers using
per-region numbering-plan metadata. Single binary, usable as a CLI or
as an HTTP service.

Parse a number:
  numplan parse --region NZ "03-331 6005"

Find numbers in text:
  numplan find --region US "Call me at (650) 253-0000 tomorrow"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	initHelp()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newEngine builds the number engine over the compiled-in numbering plans.
func newEngine() *phonenumber.Engine {
	return phonenumber.New(metadata.NewCachedRepository(plans.Source()))
}

// outputJSON reports whether --json was passed.
func outputJSON(cmd *cobra.Command) bool {
	jsonFlag, _ := cmd.Flags().GetBool("json")
	return jsonFlag
}
