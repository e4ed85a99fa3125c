package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpgatools/xsboard/pkg/board"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Query and set the board's persistent flags",
}

var flagsJTAGCmd = &cobra.Command{
	Use:   "jtag [on|off|toggle]",
	Short: "Auxiliary JTAG cable port flag",
	Long: `Query or set the flag that routes the JTAG pins to the auxiliary
cable port instead of the USB bridge. With no argument the current state is
printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlag(args, "auxiliary JTAG cable",
			func(b *board.Board) (bool, error) { return b.AuxJTAGFlag() },
			func(b *board.Board, on bool) (bool, error) { return b.SetAuxJTAGFlag(on) },
			func(b *board.Board) (bool, error) { return b.ToggleAuxJTAGFlag() },
		)
	},
}

var flagsFlashCmd = &cobra.Command{
	Use:   "flash [on|off|toggle]",
	Short: "Configuration flash enable flag",
	Long: `Query or set the flag that connects the configuration flash to the
FPGA at power-up. On XuLA2 boards the flash is permanently enabled and this
flag cannot be changed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFlag(args, "configuration flash",
			func(b *board.Board) (bool, error) { return b.FlashFlag() },
			func(b *board.Board, on bool) (bool, error) { return b.SetFlashFlag(on) },
			func(b *board.Board) (bool, error) { return b.ToggleFlashFlag() },
		)
	},
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	flagsCmd.AddCommand(flagsJTAGCmd)
	flagsCmd.AddCommand(flagsFlashCmd)
}

func runFlag(args []string, what string,
	get func(*board.Board) (bool, error),
	set func(*board.Board, bool) (bool, error),
	toggle func(*board.Board) (bool, error),
) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	var state bool
	switch {
	case len(args) == 0:
		state, err = get(b)
	case args[0] == "on":
		state, err = set(b, true)
	case args[0] == "off":
		state, err = set(b, false)
	case args[0] == "toggle":
		state, err = toggle(b)
	default:
		return fmt.Errorf("bad flag action %q: want on, off or toggle", args[0])
	}
	if err != nil {
		return err
	}
	if state {
		fmt.Printf("The %s is enabled\n", what)
	} else {
		fmt.Printf("The %s is disabled\n", what)
	}
	return nil
}
