// Command fenrirctl is a TCP client for fenrird: it places, cancels,
// and executes orders, and prints order book snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverAddr string

func main() {
	root := &cobra.Command{
		Use:   "fenrirctl",
		Short: "Command-line client for the fenrir matching engine",
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", "127.0.0.1:9001", "address of the fenrird TCP server")

	root.AddCommand(newPlaceCommand())
	root.AddCommand(newCancelCommand())
	root.AddCommand(newExecuteCommand())
	root.AddCommand(newBookCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
