// Command careerctl is the operator CLI for the career scoring engine.
//
// Usage:
//
//	careerctl predict --house Sun=10 --house Mercury=3 --sign Sun=0
//	careerctl resolve --date 1990-07-14 --time 10:30 --lat 28.61 --lon 77.2
//	careerctl genmock --count 200 --seed 7 --out data/chart_requests.json
//	careerctl validate --min-top3 0.5
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "careerctl",
	Short:         "Score birth charts against the career significator table",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(genmockCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
