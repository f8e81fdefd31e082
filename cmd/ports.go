package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icco/hathor/internal/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input ports",
	Run: func(cmd *cobra.Command, args []string) {
		ports := midi.Ports()
		if len(ports) == 0 {
			fmt.Println("No MIDI inputs found.")
			return
		}
		for i, name := range ports {
			fmt.Printf("%d: %s\n", i, name)
		}
	},
}

func init() {
	rootCmd.AddCommand(portsCmd)
}
