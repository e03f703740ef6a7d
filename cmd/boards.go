package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdlforge/xbt/boards"
	"github.com/hdlforge/xbt/log"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Manages board definitions",
	Long:  `Manages board definitions.`,
}

var boardsListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "Lists all known boards",
	Long:  `Lists all board definitions found in the board search directories.`,
	Run:   runBoardsList,
}

var boardsFetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Args:  cobra.ExactArgs(1),
	Short: "Fetches a board definition collection",
	Long:  `Fetches a board definition collection by cloning it from a git repository.`,
	Run:   runBoardsFetch,
}

func init() {
	boardsCmd.AddCommand(boardsListCmd)
	boardsCmd.AddCommand(boardsFetchCmd)
	rootCmd.AddCommand(boardsCmd)
}

func runBoardsList(cmd *cobra.Command, args []string) {
	all := boards.List()
	if len(all) == 0 {
		log.Log("No boards found. Use 'xbt boards fetch' to fetch a board collection.\n")
		return
	}
	for _, board := range all {
		fmt.Printf("%s (%s, %d resources)\n", board.Name, board.Config().Part(), len(board.Resources))
	}
}

func runBoardsFetch(cmd *cobra.Command, args []string) {
	dir, err := boards.Fetch(args[0])
	if err != nil {
		log.Fatal("%s.\n", err)
	}
	log.Success("Fetched board collection into '%s'.\n", dir)
}
