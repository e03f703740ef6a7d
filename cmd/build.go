package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hdlforge/xbt/boards"
	"github.com/hdlforge/xbt/log"
	"github.com/hdlforge/xbt/util"
	"github.com/hdlforge/xbt/xilinx"
)

var buildFlags struct {
	board     string
	toolchain string
	outputDir string
	overrides []string
	noExec    bool
}

var buildCmd = &cobra.Command{
	Use:   "build <design>",
	Args:  cobra.ExactArgs(1),
	Short: "Generates and runs the toolchain build for a design shell",
	Long: `Generates and runs the toolchain build for a design shell.

Every resource of the board is requested combinationally, giving a design
shell whose fabric signals mirror the board's I/O. The resulting netlist,
constraint files and build script are written to the output directory and
the toolchain is invoked unless --no-exec is given.

Template hooks can be overridden with --override, e.g.:
  xbt build blinky -b arty_a7 --override 'script_after_synth=write_checkpoint -force synth.dcp'`,
	Run: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildFlags.board, "board", "b", "", "Board name or board definition file")
	buildCmd.Flags().StringVarP(&buildFlags.toolchain, "toolchain", "t", "Vivado", "Toolchain to target (Vivado or Symbiflow)")
	buildCmd.Flags().StringVarP(&buildFlags.outputDir, "output-dir", "o", "BUILD", "Directory the build artifacts are written to")
	buildCmd.Flags().StringArrayVar(&buildFlags.overrides, "override", nil, "Override a named template hook ('hook=text')")
	buildCmd.Flags().BoolVar(&buildFlags.noExec, "no-exec", false, "Only generate the build artifacts, do not run the toolchain")
	buildCmd.MarkFlagRequired("board")
	rootCmd.AddCommand(buildCmd)
}

func loadBoard(nameOrFile string) *boards.Board {
	file := nameOrFile
	if !util.FileExists(file) {
		found, err := boards.Find(nameOrFile)
		if err != nil {
			log.Fatal("%s.\n", err)
		}
		file = found
	}
	board, err := boards.Load(file)
	if err != nil {
		log.Fatal("Failed to load board: %s.\n", err)
	}
	log.Debug("Using board '%s' (%s).\n", board.Name, board.Config().Part())
	return board
}

func runBuild(cmd *cobra.Command, args []string) {
	design := args[0]
	board := loadBoard(buildFlags.board)

	toolchain, err := xilinx.ParseToolchain(buildFlags.toolchain)
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	platform, err := xilinx.NewPlatform(design, board.Config(), toolchain)
	if err != nil {
		log.Fatal("Failed to set up platform: %s.\n", err)
	}

	for _, override := range buildFlags.overrides {
		hook, text, found := strings.Cut(override, "=")
		if !found {
			log.Fatal("Malformed override '%s': expected 'hook=text'.\n", override)
		}
		platform.SetOverride(hook, text)
	}

	for _, res := range board.Resources {
		pin, err := boards.Request(platform, board, res.Name, 0, nil, nil)
		if err != nil {
			log.Fatal("Failed to request resource '%s': %s.\n", res.Name, err)
		}
		if board.DefaultClk == res.Name {
			if _, err := platform.DefaultClockDomain("sync", pin.I, res.Frequency); err != nil {
				log.Fatal("Failed to create the default clock domain: %s.\n", err)
			}
		}
	}

	autogenerated := fmt.Sprintf("Automatically generated by xbt %s on %s. Do not edit.",
		xbtVersion, time.Now().Format(time.RFC1123))
	plan, err := platform.Plan(autogenerated)
	if err != nil {
		log.Fatal("Failed to generate the build plan: %s.\n", err)
	}
	if err := plan.Extract(buildFlags.outputDir); err != nil {
		log.Fatal("Failed to write build artifacts: %s.\n", err)
	}
	log.Log("Generated %d build artifacts in '%s'.\n", len(plan.Files), buildFlags.outputDir)

	if buildFlags.noExec {
		return
	}
	if err := plan.Execute(buildFlags.outputDir); err != nil {
		log.Fatal("Build failed: %s.\n", err)
	}
	log.Success("Built design '%s' for board '%s'.\n", design, board.Name)
}
