package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	flashStart string
	flashEnd   string
	flashOut   string
)

var flashCmd = &cobra.Command{
	Use:   "flash",
	Short: "Configuration flash access",
}

var flashReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a range of the configuration flash",
	Long: `Read configuration flash contents. Addresses accept decimal or
0x-prefixed hex.

Examples:
  xsload flash read --start 0 --end 0x100
  xsload flash read --start 0 --end 0x20000 --out flash.bin`,
	RunE: runFlashRead,
}

var flashWriteCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Burn a file into the configuration flash",
	Long: `Erase the configuration flash and program the file contents
starting at --start.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlashWrite,
}

var flashEraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a range of the configuration flash",
	RunE:  runFlashErase,
}

func init() {
	rootCmd.AddCommand(flashCmd)
	flashCmd.AddCommand(flashReadCmd)
	flashCmd.AddCommand(flashWriteCmd)
	flashCmd.AddCommand(flashEraseCmd)

	for _, c := range []*cobra.Command{flashReadCmd, flashWriteCmd, flashEraseCmd} {
		c.Flags().StringVar(&flashStart, "start", "0", "first address")
	}
	for _, c := range []*cobra.Command{flashReadCmd, flashEraseCmd} {
		c.Flags().StringVar(&flashEnd, "end", "", "one past the last address")
		c.MarkFlagRequired("end")
	}
	flashReadCmd.Flags().StringVar(&flashOut, "out", "",
		"write the data to a file instead of dumping it")
}

// parseAddr accepts decimal or 0x-prefixed hex addresses.
func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q: %w", s, err)
	}
	return uint32(v), nil
}

func parseRange() (uint32, uint32, error) {
	bottom, err := parseAddr(flashStart)
	if err != nil {
		return 0, 0, err
	}
	top, err := parseAddr(flashEnd)
	if err != nil {
		return 0, 0, err
	}
	return bottom, top, nil
}

func runFlashRead(cmd *cobra.Command, args []string) error {
	bottom, top, err := parseRange()
	if err != nil {
		return err
	}
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireCfgFlash(b); err != nil {
		return err
	}
	data, err := b.ReadCfgFlash(bottom, top)
	if err != nil {
		return err
	}
	if flashOut != "" {
		return os.WriteFile(flashOut, data, 0o644)
	}
	fmt.Print(hex.Dump(data))
	return nil
}

func runFlashWrite(cmd *cobra.Command, args []string) error {
	bottom, err := parseAddr(flashStart)
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

	if err := requireCfgFlash(b); err != nil {
		return err
	}
	return b.WriteCfgFlash(data, bottom, bottom+uint32(len(data)))
}

func runFlashErase(cmd *cobra.Command, args []string) error {
	bottom, top, err := parseRange()
	if err != nil {
		return err
	}
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := requireCfgFlash(b); err != nil {
		return err
	}
	return b.EraseCfgFlash(bottom, top)
}
