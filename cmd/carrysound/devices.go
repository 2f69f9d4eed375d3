package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shehabattia96/carry-sound/internal/device"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available audio devices",
	RunE:  runDevices,
}

func runDevices(cmd *cobra.Command, args []string) error {
	if err := device.Initialize(); err != nil {
		return err
	}
	defer device.Terminate()

	infos, err := device.List()
	if err != nil {
		return err
	}

	fmt.Println("\nAvailable audio devices:")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, d := range infos {
		fmt.Printf("[%d] %s\n", d.Index, d.Name)
		fmt.Printf("    Channels: %d in, %d out\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Printf("    Sample rate: %.0f Hz\n\n", d.DefaultSampleRate)
	}
	return nil
}
