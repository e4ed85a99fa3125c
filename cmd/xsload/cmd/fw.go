package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fwCmd = &cobra.Command{
	Use:   "fw",
	Short: "Microcontroller firmware maintenance",
}

var fwUpdateCmd = &cobra.Command{
	Use:   "update [image.hex]",
	Short: "Reflash the microcontroller firmware",
	Long: `Reflash the board's microcontroller, then disable the auxiliary
JTAG cable port so the new firmware drives the JTAG pins over USB.

With no image argument the variant's bundled firmware is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFwUpdate,
}

var fwVerifyCmd = &cobra.Command{
	Use:   "verify [image.hex]",
	Short: "Compare the microcontroller flash against an image",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFwVerify,
}

func init() {
	rootCmd.AddCommand(fwCmd)
	fwCmd.AddCommand(fwUpdateCmd)
	fwCmd.AddCommand(fwVerifyCmd)
}

func runFwUpdate(cmd *cobra.Command, args []string) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	var image string
	if len(args) == 1 {
		image = args[0]
	}
	return b.UpdateFirmware(image)
}

func runFwVerify(cmd *cobra.Command, args []string) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	var image string
	if len(args) == 1 {
		image = args[0]
	}
	if err := b.VerifyFirmware(image); err != nil {
		return err
	}
	fmt.Println("Firmware matches the image")
	return nil
}
