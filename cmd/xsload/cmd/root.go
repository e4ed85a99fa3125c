package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpgatools/xsboard/pkg/board"
	"github.com/fpgatools/xsboard/pkg/config"
	"github.com/fpgatools/xsboard/pkg/progress"
)

var (
	// Global flags
	usbID      int
	boardName  string
	configPath string
	brokerURL  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "xsload",
	Short: "XESS board loader and exerciser",
	Long: `Identify, test and program XESS FPGA boards over USB.

Examples:
  xsload info                          # Identify the board on USB port 0
  xsload test                          # Run the SDRAM diagnostic
  xsload fw update                     # Reflash the bundled firmware
  xsload flash write design.bit        # Burn a bitstream into the config flash
  xsload sdram read --start 0 --end 0x100`,
	Version:       "0.9.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			flag.Set("v", "1")
			flag.Set("logtostderr", "true")
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&usbID, "usb", "u", 0,
		"USB port index of the board")
	rootCmd.PersistentFlags().StringVarP(&boardName, "board", "b", "",
		"board variant name (skip probing, e.g. XuLA2-LX25)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (default xsload.yml if present)")
	rootCmd.PersistentFlags().StringVar(&brokerURL, "progress-broker", "",
		"MQTT broker to mirror progress to (mqtt://host:port[/topic])")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose hardware logging")

	// Pick up the remaining glog flags (-vmodule, -log_dir, ...).
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

// requireFPGA rejects FPGA operations on boards identified through the
// microcontroller-only fallbacks.
func requireFPGA(b *board.Board) error {
	if b.Descriptor().Part == nil {
		return fmt.Errorf("the FPGA on %s is not accessible (old firmware or JTAG disabled); try \"xsload fw update\"", b.Name())
	}
	return nil
}

func requireCfgFlash(b *board.Board) error {
	if !b.Descriptor().HasCfgFlash {
		return fmt.Errorf("%s has no accessible configuration flash", b.Name())
	}
	return nil
}

func requireSDRAM(b *board.Board) error {
	if !b.Descriptor().HasSDRAM {
		return fmt.Errorf("%s has no accessible SDRAM", b.Name())
	}
	return nil
}

// openBoard identifies the board named by the global flags and wires the
// progress sinks. The returned cleanup closes everything.
func openBoard() (*board.Board, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	var sinks progress.Multi
	sinks = append(sinks, &progress.Printer{W: os.Stdout})
	var mq *progress.MQTT
	broker := brokerURL
	if broker == "" {
		broker = cfg.ProgressBroker
	}
	if broker != "" {
		mq, err = progress.DialMQTT(broker)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, mq)
	}

	b, err := board.Identify(usbID, boardName, cfg, sinks)
	if err != nil {
		if mq != nil {
			mq.Close()
		}
		return nil, nil, err
	}
	cleanup := func() {
		b.Close()
		if mq != nil {
			mq.Close()
		}
	}
	return b, cleanup, nil
}
