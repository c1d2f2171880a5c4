package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runEur(cmd *cobra.Command, args []string) error {
	w, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	lastIdx, cum := w.history.Last()
	eur := w.f.Eur(cum, lastIdx, w.segments, eurWellLife)
	fmt.Fprintf(cmd.OutOrStdout(), "history=%.6g forecast=%.6g eur=%.6g\n", cum, eur-cum, eur)

	return nil
}

func runCum(cmd *cobra.Command, args []string) error {
	w, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	cum, err := w.f.CumFromT(cumIndices, w.history, w.segments)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, v := range cum {
		fmt.Fprintf(out, "%.0f\t%.6g\n", cumIndices[i], v)
	}

	return nil
}
