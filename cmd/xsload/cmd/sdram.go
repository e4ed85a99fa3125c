package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	sdramStart string
	sdramEnd   string
	sdramOut   string
)

var sdramCmd = &cobra.Command{
	Use:   "sdram",
	Short: "SDRAM access",
}

var sdramReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a range of the SDRAM",
	RunE:  runSdramRead,
}

var sdramWriteCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Write a file into the SDRAM",
	Args:  cobra.ExactArgs(1),
	RunE:  runSdramWrite,
}

var sdramEraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Zero-fill a range of the SDRAM",
	RunE:  runSdramErase,
}

func init() {
	rootCmd.AddCommand(sdramCmd)
	sdramCmd.AddCommand(sdramReadCmd)
	sdramCmd.AddCommand(sdramWriteCmd)
	sdramCmd.AddCommand(sdramEraseCmd)

	for _, c := range []*cobra.Command{sdramReadCmd, sdramWriteCmd, sdramEraseCmd} {
		c.Flags().StringVar(&sdramStart, "start", "0", "first address")
	}
	for _, c := range []*cobra.Command{sdramReadCmd, sdramEraseCmd} {
		c.Flags().StringVar(&sdramEnd, "end", "", "one past the last address")
		c.MarkFlagRequired("end")
	}
	sdramReadCmd.Flags().StringVar(&sdramOut, "out", "",
		"write the data to a file instead of dumping it")
}

func sdramRange() (uint32, uint32, error) {
	bottom, err := parseAddr(sdramStart)
	if err != nil {
		return 0, 0, err
	}
	top, err := parseAddr(sdramEnd)
	if err != nil {
		return 0, 0, err
	}
	return bottom, top, nil
}

func runSdramRead(cmd *cobra.Command, args []string) error {
	bottom, top, err := sdramRange()
	if err != nil {
		return err
	}
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSDRAM(b); err != nil {
		return err
	}
	data, err := b.ReadSDRAM(bottom, top)
	if err != nil {
		return err
	}
	if sdramOut != "" {
		return os.WriteFile(sdramOut, data, 0o644)
	}
	fmt.Print(hex.Dump(data))
	return nil
}

func runSdramWrite(cmd *cobra.Command, args []string) error {
	bottom, err := parseAddr(sdramStart)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSDRAM(b); err != nil {
		return err
	}
	return b.WriteSDRAM(data, bottom, bottom+uint32(len(data)))
}

func runSdramErase(cmd *cobra.Command, args []string) error {
	bottom, top, err := sdramRange()
	if err != nil {
		return err
	}
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireSDRAM(b); err != nil {
		return err
	}
	return b.EraseSDRAM(bottom, top)
}
