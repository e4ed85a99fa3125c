package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Identify the board and show its information record",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	b, cleanup, err := openBoard()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := b.Info()
	if err != nil {
		return err
	}
	fmt.Printf("Board:       %s\n", b.Name())
	fmt.Printf("USB port:    %d\n", b.LinkID())
	fmt.Printf("ID:          %s\n", info.ID)
	fmt.Printf("Firmware:    %s\n", info.Version())
	if info.Description != "" {
		fmt.Printf("Description: %s\n", info.Description)
	}
	return nil
}
