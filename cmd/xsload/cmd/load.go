package cmd

import (
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <bitstream.bit>",
	Short: "Download a bitstream into the FPGA",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireFPGA(b); err != nil {
		return err
	}
	return b.Configure(args[0])
}
