// Command declinecalc evaluates a decline-curve forecast described in a YAML document.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "declinecalc:", err)
		os.Exit(1)
	}
}
