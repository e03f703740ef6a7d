package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hdlforge/xbt/log"
)

var rootCmd = &cobra.Command{
	Use:   "xbt",
	Short: "The Xilinx build tool (xbt)",
	Long: `The Xilinx build tool (xbt) lowers design I/O onto Xilinx 7-series
hardware primitives and generates (and optionally runs) the Vivado or
Symbiflow toolchain build for a target board.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Setup()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&log.Verbose, "verbose", "v", false, "Print debug output")
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}
