package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpgatools/xsboard/pkg/usbdev"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Count the attached XESS boards",
	RunE:  runPorts,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the board's microcontroller",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(resetCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	n, err := usbdev.Count()
	if err != nil {
		return err
	}
	switch n {
	case 1:
		fmt.Println("1 board found")
	default:
		fmt.Printf("%d boards found\n", n)
	}
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := b.Reset(); err != nil {
		return err
	}
	fmt.Printf("%s reset\n", b.Name())
	return nil
}
