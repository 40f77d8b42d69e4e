package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version current code version
const Version = "1.0.0"

// NewVersionCommand prints the service version
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
}
