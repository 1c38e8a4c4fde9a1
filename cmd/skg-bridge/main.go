package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/skg-bridge/cmd/skg-bridge/commands"
)

var rootCmd = &cobra.Command{
	Use:   "skg-bridge",
	Short: "Stream-to-graph bridge for the sports knowledge graph",
	Long: `skg-bridge consumes tracking, PTZ, fusion, and intent messages off a
pub/sub broker, buffers and batches them, and writes the resulting graph
structure into a Bolt-protocol graph database.

Available commands:
  run      - Run the bridge until interrupted
  version  - Show skg-bridge version information`,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
