// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the version stamped into the binary by the mage
// Build target (-X main.version); "dev" for plain go builds.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of documint",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("documint %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
