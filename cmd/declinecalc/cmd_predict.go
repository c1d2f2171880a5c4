package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/declinecurve/forecast"
)

func runPredict(cmd *cobra.Command, args []string) error {
	w, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	from, to := w.span(predictFrom, predictTo)
	indices, err := steps(from, to, predictStep)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, q := range w.f.Predict(indices, w.segments, predictFill) {
		fmt.Fprintf(out, "%.0f\t%s\t%.6g\n", indices[i], forecast.IndexToDate(indices[i]).Format("2006-01-02"), q)
	}

	return nil
}
