// Command blackbox inspects and analyzes speaker blackbox captures
// preserved by the protection daemon.
//
// Usage:
//
//	blackbox info <base>
//	blackbox analyze --conf <machine.conf> [--out dir] [--coeff 35c] <base>
//	blackbox export --out capture.wav <base>
//
// <base> is the capture path without extension; both the .fdr/.cvr and
// the .meta/.raw naming conventions are accepted.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "blackbox",
	Short:         "Speaker blackbox capture analysis",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(infoCmd, analyzeCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
