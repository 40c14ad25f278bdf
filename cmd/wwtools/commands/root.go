// Package commands wires the wwtools subcommands onto a cobra root command,
// grounded on the teacher's flag/output conventions and on
// _examples/haivivi-giztoy's cobra command-tree layout.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/wwiseaudio/wwtools/internal/output"
)

var rootCmd = &cobra.Command{
	Use:   "wwtools",
	Short: "Convert Wwise WEM audio to OGG Vorbis and inspect BNK soundbanks",
	Long: `wwtools converts Wwise WEM audio assets to standards-compliant OGG
Vorbis, and parses Wwise BNK soundbanks to extract their embedded WEMs or
report which events play which audio files.

Run without a subcommand to convert every *.wem file in the current
directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvertDirectory,
}

var (
	flagVerbose bool
	flagQuiet   bool
	flagDebug   bool
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "show debug information")

	addCodecFlags(rootCmd)
	rootCmd.AddCommand(wemCmd)
	rootCmd.AddCommand(bnkCmd)

	cobra.OnInitialize(func() {
		output.Verbose = flagVerbose
		output.Quiet = flagQuiet
		output.Debug = flagDebug
	})
}
