package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testBitstream string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the board diagnostic",
	Long: `Download the diagnostic bitstream and exercise the SDRAM with a
write/read pattern test.

Examples:
  xsload test                       # Use the bundled diagnostic bitstream
  xsload test --bitstream my.bit    # Use a custom diagnostic`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVar(&testBitstream, "bitstream", "",
		"diagnostic bitstream (default: the variant's bundled one)")
}

func runTest(cmd *cobra.Command, args []string) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireFPGA(b); err != nil {
		return err
	}
	if err := b.SelfTest(testBitstream); err != nil {
		return err
	}
	fmt.Printf("%s passed the diagnostic test\n", b.Name())
	return nil
}
